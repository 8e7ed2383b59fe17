package core

import "context"

// TextGenerator is any service that can turn a prompt into generated
// natural-language text. Used for the login-code email body and the
// study performance summary.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
