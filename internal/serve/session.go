// SPDX-License-Identifier: MPL-2.0

package serve

import (
	"fmt"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
)

// passwordHandler handles password authentication using tokens.
func (s *Server) passwordHandler(ctx ssh.Context, password string) bool {
	token, valid := s.ValidateToken(password)
	if !valid {
		s.logger.Warn("Invalid token authentication attempt", "user", ctx.User())
		return false
	}

	// Store the token info in the context for later use
	ctx.SetValue("token", token)
	ctx.SetValue("clientID", token.ClientID)

	s.logger.Debug("Token authentication successful", "clientID", token.ClientID)
	return true
}

// publicKeyHandler rejects all public key authentication.
// We only want token-based authentication.
func (s *Server) publicKeyHandler(_ ssh.Context, _ ssh.PublicKey) bool {
	// Reject public key auth - we only accept token-based password auth
	return false
}

// recipeMiddleware dispatches exactly one recipe per session. The first
// command word is the recipe name, the rest are its arguments. Sessions
// that request a shell (no command) are rejected.
func (s *Server) recipeMiddleware() wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			cmd := sess.Command()

			if len(cmd) == 0 {
				_, _ = fmt.Fprintln(sess.Stderr(), "interactive sessions are not supported; specify a recipe name")
				_ = sess.Exit(1) //nolint:errcheck // Terminal operation; error non-critical
				return
			}

			s.runSession(sess, cmd[0], cmd[1:])
		}
	}
}

// runSession runs one recipe with the session's I/O attached.
func (s *Server) runSession(sess ssh.Session, recipe string, args []string) {
	s.logger.Info("Running recipe", "recipe", recipe, "args", args, "user", sess.User())

	code, err := s.runRecipe(sess.Context(), recipe, args, sess, sess, sess.Stderr())
	if err != nil {
		_, _ = fmt.Fprintf(sess.Stderr(), "Error: %v\n", err)
		_ = sess.Exit(1) //nolint:errcheck // Terminal operation; error non-critical
		return
	}

	_ = sess.Exit(int(code)) //nolint:errcheck // Terminal operation; error non-critical
}
