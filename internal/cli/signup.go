package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/callmetuna/padhneyAI/internal/domain"
	"github.com/callmetuna/padhneyAI/internal/infra/logger"
	"github.com/callmetuna/padhneyAI/internal/usecase"
)

type signupOptions struct {
	workspace string
	name      string
	email     string
	password  string
	confirm   string
	baseURL   string
	timeout   time.Duration
	save      bool
	format    string
}

// passwordPrompt reads one secret; the default reads the terminal without echo.
type passwordPrompt func(w io.Writer, label string) (string, error)

var promptPassword passwordPrompt = readTerminalPassword

func signupCmd() *cobra.Command {
	var opts signupOptions

	c := &cobra.Command{
		Use:   "signup",
		Short: "Submit a sign-up request to the auth service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(opts.format); err != nil {
				return err
			}
			if err := opts.fillPasswords(cmd.ErrOrStderr(), promptPassword); err != nil {
				return err
			}

			ws, err := loadSession(opts.workspace, sessionOverrides{
				baseURL: opts.baseURL,
				timeout: opts.timeout,
				save:    opts.save,
			})
			if err != nil {
				return err
			}

			debug := debugEnabled(cmd)
			cleanup := startLogging(ws, debug)
			defer func() { _ = cleanup() }()
			if debug && logger.Path() != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "debug log: %s\n", logger.Path())
			}

			return runSignup(cmd.Context(), cmd.OutOrStdout(), ws.submitter(logger.L()), ws.registrar.Endpoint(), opts)
		},
	}

	c.Flags().StringVarP(&opts.workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVar(&opts.name, "name", "", "Full name (sent as username)")
	c.Flags().StringVar(&opts.email, "email", "", "Email address")
	c.Flags().StringVar(&opts.password, "password", "", "Password (prompted without echo if omitted)")
	c.Flags().StringVar(&opts.confirm, "confirm-password", "", "Password confirmation (prompted without echo if omitted)")
	c.Flags().StringVar(&opts.baseURL, "base-url", "", "Auth service base URL (overrides config)")
	c.Flags().DurationVar(&opts.timeout, "timeout", 0, "Request timeout, e.g. 10s (overrides config)")
	c.Flags().BoolVar(&opts.save, "save", false, "Record the attempt under the history dir")
	c.Flags().StringVar(&opts.format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("email")
	return c
}

type registrationSubmitter interface {
	Execute(ctx context.Context, form domain.RegistrationForm) (domain.RegistrationResult, error)
}

func runSignup(ctx context.Context, w io.Writer, uc registrationSubmitter, endpoint string, opts signupOptions) error {
	form := usecase.NormalizeForm(domain.RegistrationForm{
		FullName:        opts.name,
		Email:           opts.email,
		Password:        opts.password,
		ConfirmPassword: opts.confirm,
	})

	if err := usecase.ValidateForm(form); err != nil {
		var fe *usecase.FormError
		if errors.As(err, &fe) {
			return fmt.Errorf("invalid form: %s", strings.Join(fe.Messages(), "; "))
		}
		return err
	}

	res, err := uc.Execute(ctx, form)
	if err != nil {
		return err
	}

	if err := printResult(w, res, endpoint, opts.format); err != nil {
		return err
	}

	if !res.OK {
		return fmt.Errorf("signup failed (%s)", res.Outcome())
	}
	return nil
}

func (o *signupOptions) fillPasswords(w io.Writer, prompt passwordPrompt) error {
	if o.password == "" {
		p, err := prompt(w, "Password: ")
		if err != nil {
			return err
		}
		o.password = p
	}
	if o.confirm == "" {
		p, err := prompt(w, "Confirm password: ")
		if err != nil {
			return err
		}
		o.confirm = p
	}
	return nil
}

func readTerminalPassword(w io.Writer, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal: pass --password and --confirm-password")
	}

	fmt.Fprint(w, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func checkFormat(format string) error {
	switch format {
	case "pretty", "json", "":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

type resultPayload struct {
	OK         bool   `json:"ok"`
	Outcome    string `json:"outcome"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
	Endpoint   string `json:"endpoint"`
}

func printResult(w io.Writer, res domain.RegistrationResult, endpoint string, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resultPayload{
			OK:         res.OK,
			Outcome:    res.Outcome(),
			Message:    res.UserMessage(),
			StatusCode: res.StatusCode,
			Endpoint:   endpoint,
		})
	case "pretty", "":
		printPrettyResult(w, res, endpoint)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func printPrettyResult(w io.Writer, res domain.RegistrationResult, endpoint string) {
	mark := "✓"
	if !res.OK {
		mark = "✗"
	}

	fmt.Fprintf(w, "%s %s\n", mark, res.UserMessage())
	fmt.Fprintf(w, "  endpoint: %s\n", endpoint)
	if res.StatusCode != 0 {
		fmt.Fprintf(w, "  status:   %d\n", res.StatusCode)
	}
	if !res.OK {
		fmt.Fprintf(w, "  outcome:  %s\n", res.Outcome())
	}
}
