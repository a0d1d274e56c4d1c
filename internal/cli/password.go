package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
)

// HashPasswordCmd prints a bcrypt hash suitable for OWNER_PASSWORD_HASH.
type HashPasswordCmd struct {
	Password string `arg:"" optional:"" help:"Plain password. Read from stdin when omitted."`
}

func (cmd *HashPasswordCmd) Run(c *Context) error {
	password := cmd.Password
	if password == "" {
		if c.In == nil {
			return errors.New("no password given")
		}
		line, err := bufio.NewReader(c.In).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := domain.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.Out, hash)
	return nil
}
