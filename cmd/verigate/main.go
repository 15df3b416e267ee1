// Command verigate drives the verification gateway API from the shell:
// send a code, probe send ability, check a request, or revoke a message
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"verigate/internal/gateway"
	"verigate/internal/platform/config"
	perr "verigate/internal/platform/errors"
)

var version = "dev"

const defaultTimeout = 10 * time.Second

const usage = `usage: verigate <command> [flags]

commands:
  send     send a verification message to a phone number
  ability  check whether a phone number can receive a verification message
  check    fetch the status of an earlier request, optionally judging a code
  revoke   revoke a sent verification message
  version  print the build version

the access token comes from -token or the GATEWAY_TOKEN env var
run "verigate <command> -h" for command flags
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	if cmd == "version" {
		fmt.Println(version)
		return
	}

	result, err := run(cmd, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verigate: %s: %s\n", perr.CodeOf(err), messageOf(err))
		os.Exit(perr.ExitCode(err))
	}

	out, merr := json.MarshalIndent(result, "", "  ")
	if merr != nil {
		fmt.Fprintf(os.Stderr, "verigate: json: %v\n", merr)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// clientFlags are shared by every command that talks to the gateway
type clientFlags struct {
	token   *string
	baseURL *string
	timeout *time.Duration
}

func addClientFlags(fs *flag.FlagSet) clientFlags {
	return clientFlags{
		token:   fs.String("token", "", "gateway access token (default GATEWAY_TOKEN env var)"),
		baseURL: fs.String("base-url", "", "override the gateway endpoint, mostly for testing"),
		timeout: fs.Duration("timeout", defaultTimeout, "per-request timeout"),
	}
}

// client builds the gateway client, flags first, GATEWAY_* env second
func (f clientFlags) client() (*gateway.Client, error) {
	env := config.New().Prefix("GATEWAY_")
	token := *f.token
	if token == "" {
		token = env.MayString("TOKEN", "")
	}
	baseURL := *f.baseURL
	if baseURL == "" {
		baseURL = env.MayString("BASE_URL", "")
	}
	timeout := *f.timeout
	if timeout == defaultTimeout {
		timeout = env.MayDuration("TIMEOUT", defaultTimeout)
	}
	return gateway.New(gateway.Options{
		Token:   token,
		BaseURL: baseURL,
		Timeout: timeout,
	})
}

func run(cmd string, args []string) (any, error) {
	switch cmd {
	case "send":
		return runSend(args)
	case "ability":
		return runAbility(args)
	case "check":
		return runCheck(args)
	case "revoke":
		return runRevoke(args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return nil, perr.InvalidArgf("unknown command %q", cmd)
	}
}

func runSend(args []string) (any, error) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	cf := addClientFlags(fs)
	var (
		fPhone    = fs.String("phone", "", "recipient phone number in E.164 format (required)")
		fReqID    = fs.String("request-id", "", "request id from a prior ability check, for the cheaper rate")
		fSender   = fs.String("sender-username", "", "verified sender channel username")
		fCode     = fs.String("code", "", "caller-generated code of 4 to 8 digits")
		fCodeLen  = fs.Int("code-length", 0, "length of the generated code, 4 to 8 (ignored when -code is set)")
		fCallback = fs.String("callback-url", "", "https URL that will receive delivery reports")
		fPayload  = fs.String("payload", "", "opaque payload echoed in delivery reports, max 128 bytes")
		fTTL      = fs.Int("ttl", 0, "message time-to-live in seconds, 60 to 86400")
	)
	_ = fs.Parse(args)

	c, err := cf.client()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *cf.timeout)
	defer cancel()

	return c.SendVerificationMessage(ctx, gateway.SendVerificationMessage{
		PhoneNumber:    *fPhone,
		RequestID:      *fReqID,
		SenderUsername: *fSender,
		Code:           *fCode,
		CodeLength:     *fCodeLen,
		CallbackURL:    *fCallback,
		Payload:        *fPayload,
		TTL:            *fTTL,
	})
}

func runAbility(args []string) (any, error) {
	fs := flag.NewFlagSet("ability", flag.ExitOnError)
	cf := addClientFlags(fs)
	fPhone := fs.String("phone", "", "phone number in E.164 format (required)")
	_ = fs.Parse(args)

	c, err := cf.client()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *cf.timeout)
	defer cancel()

	return c.CheckSendAbility(ctx, gateway.CheckSendAbility{PhoneNumber: *fPhone})
}

func runCheck(args []string) (any, error) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	cf := addClientFlags(fs)
	var (
		fReqID = fs.String("request-id", "", "request id returned by send (required)")
		fCode  = fs.String("code", "", "user-entered code to judge")
	)
	_ = fs.Parse(args)

	c, err := cf.client()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *cf.timeout)
	defer cancel()

	return c.CheckVerificationStatus(ctx, gateway.CheckVerificationStatus{
		RequestID: *fReqID,
		Code:      *fCode,
	})
}

func runRevoke(args []string) (any, error) {
	fs := flag.NewFlagSet("revoke", flag.ExitOnError)
	cf := addClientFlags(fs)
	fReqID := fs.String("request-id", "", "request id returned by send (required)")
	_ = fs.Parse(args)

	c, err := cf.client()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *cf.timeout)
	defer cancel()

	accepted, err := c.RevokeVerificationMessage(ctx, gateway.RevokeVerificationMessage{RequestID: *fReqID})
	if err != nil {
		return nil, err
	}
	return map[string]bool{"revocation_accepted": accepted}, nil
}

// messageOf prefers the structured message over the raw error chain
func messageOf(err error) string {
	if e, ok := perr.As(err); ok {
		return e.Error()
	}
	return err.Error()
}
