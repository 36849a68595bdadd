package forms

import (
	"context"
	"strings"
	"time"

	"github.com/andreyvit/formkit/rules"
	"github.com/andreyvit/formkit/tokens"
)

const (
	CSRFMessage    = "The security token does not match."
	CaptchaMessage = "The answer is incorrect."
)

// CSRF is a hidden input carrying the session's CSRF token. It always renders
// the token; the submitted value must match it.
type CSRF struct {
	Input
	token     string
	submitted string
}

func NewCSRF(ctx context.Context, keeper *tokens.Keeper, name string, lifetime time.Duration) (*CSRF, error) {
	if lifetime <= 0 {
		lifetime = tokens.DefaultLifetime
	}
	rec, err := keeper.CSRF(ctx, lifetime)
	if err != nil {
		return nil, err
	}
	c := &CSRF{Input: *NewHidden(name, rec.Value), token: rec.Value}
	c.typ = "csrf"
	return c, nil
}

// SetAttribute ignores "value"; the token is always rendered.
func (c *CSRF) SetAttribute(key, value string) {
	if key != "value" {
		c.Input.SetAttribute(key, value)
	}
}

func (c *CSRF) SetAttributes(attrs Attrs) {
	rest := make(Attrs, len(attrs))
	for k, v := range attrs {
		if k != "value" {
			rest[k] = v
		}
	}
	c.Input.SetAttributes(rest)
}

func (c *CSRF) Token() string      { return c.token }
func (c *CSRF) Value() any         { return c.submitted }
func (c *CSRF) SetValue(value any) { c.submitted = rules.String(value) }
func (c *CSRF) ResetValue()        { c.submitted = "" }

func (c *CSRF) Validate(values map[string]any) bool {
	if c.submitted != c.token {
		c.errors.AddUnique(CSRFMessage)
	}
	rules.Run(c.validators, c.submitted, values, &c.errors)
	return len(c.errors) == 0
}

// Captcha is a text input asking the session's challenge question. The
// question becomes the label; the typed answer is never rendered back.
type Captcha struct {
	Input
	question string
	answer   string
}

// NewCaptcha loads the live challenge or issues one. An empty question asks a
// random arithmetic equation; refresh forces a new challenge.
func NewCaptcha(ctx context.Context, keeper *tokens.Keeper, name string, lifetime time.Duration, question, answer string, refresh bool) (*Captcha, error) {
	if lifetime <= 0 {
		lifetime = tokens.DefaultLifetime
	}
	rec, err := keeper.Captcha(ctx, lifetime, question, answer, refresh)
	if err != nil {
		return nil, err
	}
	c := &Captcha{Input: *NewText(name, ""), question: rec.Value, answer: rec.Answer}
	c.typ = "captcha"
	c.SetRenderValue(false)
	c.node.SetAttribute("autocomplete", "off")
	c.SetLabel(rec.Value)
	return c, nil
}

func (c *Captcha) Question() string { return c.question }

func (c *Captcha) Validate(values map[string]any) bool {
	if !strings.EqualFold(strings.TrimSpace(c.value), c.answer) {
		c.errors.AddUnique(CaptchaMessage)
	}
	rules.Run(c.validators, c.value, values, &c.errors)
	return len(c.errors) == 0
}
