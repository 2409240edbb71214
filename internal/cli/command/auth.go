package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/lingvo-go/internal/cli/output"
	"github.com/yndnr/lingvo-go/internal/core/domain"
	"github.com/yndnr/lingvo-go/internal/telemetry/logger"
)

// LoginCommand authenticates and persists the credential.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in with a username and password",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Account username",
				EnvVars: []string{"LINGVO_USERNAME"},
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password (prompted when omitted)",
				EnvVars: []string{"LINGVO_PASSWORD"},
			},
		},
		Action: login,
	}
}

func login(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}

	prompt := newPrompter(rt)
	username, err := prompt.value(c.String("username"), "Username")
	if err != nil {
		return err
	}
	password, err := prompt.value(c.String("password"), "Password")
	if err != nil {
		return err
	}

	if err := rt.session.Login(c.Context, username, password); err != nil {
		return err
	}
	rt.printf("Logged in as %s\n", rt.session.Snapshot().Identity.Username)
	return nil
}

// RegisterCommand creates an account and logs in.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address"},
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password (prompted when omitted)"},
			&cli.StringFlag{Name: "password-confirm", Usage: "Password again (prompted when omitted)"},
		},
		Action: register,
	}
}

func register(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}

	prompt := newPrompter(rt)
	var r domain.Registration
	if r.Email, err = prompt.value(c.String("email"), "Email"); err != nil {
		return err
	}
	if r.Username, err = prompt.value(c.String("username"), "Username"); err != nil {
		return err
	}
	if r.Password, err = prompt.value(c.String("password"), "Password"); err != nil {
		return err
	}
	if r.ConfirmPassword, err = prompt.value(c.String("password-confirm"), "Password confirm"); err != nil {
		return err
	}

	if err := rt.session.Register(c.Context, r); err != nil {
		return err
	}
	rt.printf("Account created. Logged in as %s\n", rt.session.Snapshot().Identity.Username)
	return nil
}

// LogoutCommand revokes the credential.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Log out and forget the stored credential",
		Action: logout,
	}
}

func logout(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}
	// Restore so a credential from an earlier run is revoked, not just dropped.
	rt.restore(c.Context)
	err = rt.session.Logout(c.Context)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrTransitionInProgress):
		return err
	default:
		// A failed server logout is logged, never shown. A rejected
		// credential is dropped locally since the server no longer knows it.
		rt.check(c.Context, err)
		if rt.session.Snapshot().Authenticated() {
			rt.log.Warn("logout failed; still logged in", "error", err)
			return nil
		}
	}
	rt.printf("Logged out\n")
	return nil
}

// WhoamiCommand prints the session state.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the logged-in user",
		Action: whoami,
	}
}

type whoamiView struct {
	Status     string           `json:"status" yaml:"status"`
	Credential string           `json:"credential,omitempty" yaml:"credential,omitempty"`
	User       *domain.Identity `json:"user,omitempty" yaml:"user,omitempty"`
}

func (v whoamiView) Value() any { return v }

func (v whoamiView) Table() *output.Table {
	if v.User == nil {
		return output.KeyValue("status", v.Status)
	}
	role := "user"
	switch {
	case v.User.IsRoot:
		role = "root"
	case v.User.IsAdmin:
		role = "admin"
	}
	return output.KeyValue(
		"status", v.Status,
		"id", fmt.Sprint(v.User.ID),
		"username", v.User.Username,
		"email", v.User.Email,
		"role", role,
		"credential", v.Credential,
	)
}

func whoami(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}
	rt.restore(c.Context)

	snap := rt.session.Snapshot()
	return rt.render(whoamiView{
		Status:     snap.Status.String(),
		Credential: logger.RedactCredential(snap.Credential),
		User:       snap.Identity,
	})
}

// prompter asks for values the user did not pass as flags. In the shell
// stdin belongs to the line reader, so missing values are an error there.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(rt *Runtime) *prompter {
	if rt.Interactive() {
		return &prompter{out: rt.errOut}
	}
	return &prompter{in: bufio.NewReader(rt.in), out: rt.errOut}
}

func (p *prompter) value(given, label string) (string, error) {
	if given != "" {
		return given, nil
	}
	flag := "--" + strings.ReplaceAll(strings.ToLower(label), " ", "-")
	if p.in == nil {
		return "", domain.ErrMissingArgument.WithMessage(flag + " is required in the shell")
	}
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", domain.ErrMissingArgument.WithMessage(flag + " is required")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
