package forms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/andreyvit/formkit/filters"
	"github.com/andreyvit/formkit/logging"
	"github.com/andreyvit/formkit/rules"
	"github.com/andreyvit/formkit/tokens"
)

var (
	ErrMissingKey  = errors.New("missing required key")
	ErrUnknownType = errors.New("unknown field type")
	ErrNoTokens    = errors.New("no token store configured")
)

// ConfigError is a configuration problem of one field.
type ConfigError struct {
	Field string
	Key   string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("field %q: %s: %v", e.Field, e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FieldConfig declares one field.
type FieldConfig struct {
	Name string
	Type string

	Value   any
	Values  Choices
	Preset  string // named option preset, or a set name in XML
	XML     string // path of an options file
	Checked any    // bool for a checkbox; key or keys for sets and selects

	Label           string
	LabelAttributes Attrs
	Hint            string
	HintAttributes  Attrs
	Prepend         string
	Append          string
	Indent          string
	Legend          string

	Required        bool
	RequiredMessage string
	Disabled        bool
	Readonly        bool
	ErrorPre        bool

	Attributes Attrs
	Validators []any

	Render  bool          // password: render the current value
	Expire  time.Duration // token lifetime
	Captcha string        // custom captcha question
	Answer  string        // answer to the custom question
	Min     string
	Max     string

	ACL string // ACL resource, defaults to the field name
}

type FieldsetConfig struct {
	Legend     string
	Container  string
	Attributes Attrs
	Groups     [][]FieldConfig
}

type FormConfig struct {
	Action     string
	Method     string
	Attributes Attrs
	Columns    []Column
	Filters    []filters.Filter
	Fieldsets  []FieldsetConfig
}

// Constructor makes an element of one kind from its config.
type Constructor func(ctx context.Context, b *Builder, cfg *FieldConfig) (Element, error)

var kinds = map[string]Constructor{
	"button":          newButtonField,
	"input-button":    inputKind("button"),
	"textarea":        newTextareaField,
	"checkbox":        newCheckboxField,
	"radio":           newRadioField,
	"checkbox-set":    newCheckboxSetField,
	"radio-set":       newRadioSetField,
	"select":          newSelectField,
	"select-multiple": newSelectField,
	"datalist":        newDatalistField,
	"file":            newFileField,
	"csrf":            newCSRFField,
	"captcha":         newCaptchaField,
	"number":          rangedKind("number"),
	"range":           rangedKind("range"),
	"datetime":        rangedKind("datetime"),
	"datetime-local":  rangedKind("datetime-local"),
	"password":        newPasswordField,
}

var inputTypes = []string{
	"text", "email", "hidden", "date", "time", "url", "color", "month",
	"search", "tel", "week", "submit", "reset",
}

func init() {
	for _, typ := range inputTypes {
		kinds[typ] = inputKind(typ)
	}
	for kind, ctor := range kinds {
		if ctor == nil {
			panic(fmt.Sprintf("forms: kind %q has no constructor", kind))
		}
	}
}

// Kinds lists the field types the Builder understands.
func Kinds() []string {
	result := maps.Keys(kinds)
	slices.Sort(result)
	return result
}

// Builder makes elements, fieldsets and forms from declarations.
type Builder struct {
	// Tokens is required for csrf and captcha fields.
	Tokens *tokens.Keeper

	// RefreshCaptcha issues a new captcha challenge instead of reusing the
	// live one.
	RefreshCaptcha bool
}

var defaultBuilder Builder

// NewField builds one element without token support.
func NewField(cfg FieldConfig) (Element, error) {
	return defaultBuilder.Field(context.Background(), cfg)
}

func (b *Builder) Field(ctx context.Context, cfg FieldConfig) (Element, error) {
	if cfg.Name == "" {
		return nil, &ConfigError{Field: cfg.Name, Key: "name", Err: ErrMissingKey}
	}
	if cfg.Type == "" {
		return nil, &ConfigError{Field: cfg.Name, Key: "type", Err: ErrMissingKey}
	}
	ctor := kinds[cfg.Type]
	if ctor == nil {
		return nil, &ConfigError{Field: cfg.Name, Key: "type", Err: fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)}
	}
	e, err := ctor(ctx, b, &cfg)
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			return nil, err
		}
		return nil, &ConfigError{Field: cfg.Name, Err: err}
	}
	configure(e, &cfg)
	logging.From(ctx).Debug("forms: field built", "name", cfg.Name, "type", cfg.Type)
	return e, nil
}

func configure(e Element, cfg *FieldConfig) {
	if cfg.Attributes != nil {
		e.SetAttributes(cfg.Attributes)
	}
	if cfg.Label != "" {
		e.SetLabel(cfg.Label)
	}
	e.SetLabelAttributes(cfg.LabelAttributes)
	e.SetHint(cfg.Hint)
	e.SetHintAttributes(cfg.HintAttributes)
	if cfg.Prepend != "" {
		e.SetPrepend(cfg.Prepend, nil)
	}
	if cfg.Append != "" {
		e.SetAppend(cfg.Append, nil)
	}
	if cfg.Indent != "" {
		e.Node().SetIndent(cfg.Indent)
	}
	if cfg.Required {
		e.SetRequired(true)
	}
	if cfg.RequiredMessage != "" {
		e.SetRequiredMessage(cfg.RequiredMessage)
	}
	if cfg.Disabled {
		e.SetDisabled(true)
	}
	if cfg.Readonly {
		e.SetReadonly(true)
	}
	e.SetErrorPre(cfg.ErrorPre)
	for _, v := range cfg.Validators {
		e.AddValidator(v)
	}
}

func (b *Builder) Fieldset(ctx context.Context, cfg FieldsetConfig) (*Fieldset, error) {
	fs := NewFieldset(cfg.Legend)
	fs.SetContainer(cfg.Container)
	if cfg.Attributes != nil {
		fs.SetAttributes(cfg.Attributes)
	}
	for i, fields := range cfg.Groups {
		if i > 0 {
			fs.CreateGroup()
		}
		for _, fc := range fields {
			e, err := b.Field(ctx, fc)
			if err != nil {
				return nil, err
			}
			fs.AddField(e)
		}
	}
	return fs, nil
}

func (b *Builder) Form(ctx context.Context, cfg FormConfig) (*Form, error) {
	form := NewForm(cfg.Action, cfg.Method)
	if cfg.Attributes != nil {
		form.SetAttributes(cfg.Attributes)
	}
	for _, fsc := range cfg.Fieldsets {
		fs, err := b.Fieldset(ctx, fsc)
		if err != nil {
			return nil, err
		}
		form.AddFieldset(fs)
		for _, fields := range fsc.Groups {
			for _, fc := range fields {
				if fc.ACL != "" {
					form.SetResource(fc.Name, fc.ACL)
				}
			}
		}
	}
	for _, col := range cfg.Columns {
		form.AddColumn(col.Class, col.Fieldsets...)
	}
	form.AddFilter(cfg.Filters...)
	return form, nil
}

func cfgValue(cfg *FieldConfig) string {
	return rules.String(cfg.Value)
}

func inputKind(typ string) Constructor {
	return func(ctx context.Context, b *Builder, cfg *FieldConfig) (Element, error) {
		return NewInput(cfg.Name, typ, cfgValue(cfg)), nil
	}
}

func rangedKind(typ string) Constructor {
	return func(ctx context.Context, b *Builder, cfg *FieldConfig) (Element, error) {
		i := NewInput(cfg.Name, typ, cfgValue(cfg))
		i.SetRange(cfg.Min, cfg.Max)
		return i, nil
	}
}

func newPasswordField(ctx context.Context, b *Builder, cfg *FieldConfig) (Element, error) {
	i := NewPassword(cfg.Name)
	i.SetRenderValue(cfg.Render)
	i.SetValue(cfgValue(cfg))
	return i, nil
}

func newButtonField(ctx context.Context, b *Builder, cfg *FieldConfig) (Element, error) {
	caption := cfgValue(cfg)
	if caption == "" {
		caption = cfg.Label
		cfg.Label = ""
	}
	return NewButton(cfg.Name, caption), nil
}

func newTextareaField(ctx context.Context, b *Builder, cfg *FieldConfig) (Element, error) {
	return NewTextarea(cfg.Name, cfgValue(cfg)), nil
}

func checkedBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return !rules.IsEmpty(v)
}

func newCheckboxField(ctx context.Context, b *Builder, cfg *FieldConfig) (Element, error) {
	return NewCheckbox(cfg.Name, cfgValue(cfg), checkedBool(cfg.Checked)), nil
}

func newRadioField(ctx context.Context, b *Builder, cfg *FieldConfig) (Element, error) {
	return NewRadio(cfg.Name, cfgValue(cfg), checkedBool(cfg.Checked)), nil
}

// choices resolves the options of a field: an XML set, a preset, or the
// literal values.
func choices(ctx context.Context, cfg *FieldConfig) (Choices, error) {
	switch {
	case cfg.XML != "":
		cc, err := LoadOptionsXML(cfg.XML, cfg.Preset)
		if err != nil {
			return nil, &ConfigError{Field: cfg.Name, Key: "xml", Err: err}
		}
		return cc, nil
	case cfg.Preset != "":
		cc, err := Preset(cfg.Preset)
		if err != nil {
			logging.From(ctx).Debug("forms: bad preset", "name", cfg.Name, "preset", cfg.Preset)
			return nil, &ConfigError{Field: cfg.Name, Key: "values", Err: err}
		}
		return cc, nil
	default:
		return cfg.Values, nil
	}
}

func newCheckboxSetField(ctx context.Context, b *Builder, cfg *FieldConfig) (Element, error) {
	cc, err := choices(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := NewCheckboxSet(cfg.Name, cc, rules.Strings(cfg.Checked))
	s.SetLegend(cfg.Legend)
	return s, nil
}

func newRadioSetField(ctx context.Context, b *Builder, cfg *FieldConfig) (Element, error) {
	cc, err := choices(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := NewRadioSet(cfg.Name, cc, rules.String(cfg.Checked))
	s.SetLegend(cfg.Legend)
	return s, nil
}

func newSelectField(ctx context.Context, b *Builder, cfg *FieldConfig) (Element, error) {
	cc, err := choices(ctx, cfg)
	if err != nil {
		return nil, err
	}
	selected := cfg.Checked
	if selected == nil {
		selected = cfg.Value
	}
	if cfg.Type == "select-multiple" {
		return NewSelectMultiple(cfg.Name, cc, rules.Strings(selected)), nil
	}
	return NewSelect(cfg.Name, cc, selected), nil
}

func newDatalistField(ctx context.Context, b *Builder, cfg *FieldConfig) (Element, error) {
	cc, err := choices(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewDatalist(cfg.Name, cc, cfgValue(cfg)), nil
}

func newFileField(ctx context.Context, b *Builder, cfg *FieldConfig) (Element, error) {
	return NewFile(cfg.Name), nil
}

func newCSRFField(ctx context.Context, b *Builder, cfg *FieldConfig) (Element, error) {
	if b.Tokens == nil {
		return nil, &ConfigError{Field: cfg.Name, Key: "type", Err: ErrNoTokens}
	}
	return NewCSRF(ctx, b.Tokens, cfg.Name, cfg.Expire)
}

func newCaptchaField(ctx context.Context, b *Builder, cfg *FieldConfig) (Element, error) {
	if b.Tokens == nil {
		return nil, &ConfigError{Field: cfg.Name, Key: "type", Err: ErrNoTokens}
	}
	return NewCaptcha(ctx, b.Tokens, cfg.Name, cfg.Expire, cfg.Captcha, cfg.Answer, b.RefreshCaptcha)
}
