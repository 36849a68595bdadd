package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/andreyvit/formkit/formconfig"
	"github.com/andreyvit/formkit/forms"
	"github.com/andreyvit/formkit/tokens"
)

func renderCmd() *cobra.Command {
	var (
		templatePath     string
		htmlTemplatePath string
		outPath          string
		sets             []string
		validate         bool
	)
	cmd := &cobra.Command{
		Use:   "render <definition>",
		Short: "Print the HTML of a form definition",
		Example: `  formkit render signup.yaml
  formkit render signup.yaml --set email=bad --validate
  formkit render signup.yaml --template layout.txt --out signup.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			form, err := buildForm(ctx, args[0])
			if err != nil {
				return err
			}
			if len(sets) > 0 || validate {
				values, err := parseSets(sets)
				if err != nil {
					return err
				}
				form.SetFieldValues(values)
			}
			if validate {
				form.IsValid()
			}

			var markup string
			switch {
			case htmlTemplatePath != "":
				ft, err := forms.NewFileTemplate(form, htmlTemplatePath)
				if err != nil {
					return err
				}
				markup, err = ft.Render()
				if err != nil {
					return err
				}
			case templatePath != "":
				text, err := os.ReadFile(templatePath)
				if err != nil {
					return err
				}
				markup = forms.NewTemplate(form, string(text)).Render()
			default:
				markup = form.Render()
			}

			var out io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			_, err = io.WriteString(out, markup)
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&templatePath, "template", "", "placeholder template file with [{name}] markers")
	flags.StringVar(&htmlTemplatePath, "html-template", "", "html/template file with {{.name}} actions")
	flags.StringVarP(&outPath, "out", "o", "", "write to this file instead of stdout")
	flags.StringArrayVar(&sets, "set", nil, "submitted value as name=value, repeat for lists")
	flags.BoolVar(&validate, "validate", false, "validate the values and render errors")
	cmd.MarkFlagsMutuallyExclusive("template", "html-template")
	return cmd
}

// buildForm loads a definition and builds it with a throwaway session, so
// csrf and captcha fields render with fresh challenges.
func buildForm(ctx context.Context, path string) (*forms.Form, error) {
	cfg, err := formconfig.Load(path)
	if err != nil {
		return nil, err
	}
	b := &forms.Builder{Tokens: tokens.NewKeeper(tokens.NewMemoryStore(), uuid.NewString())}
	return b.Form(ctx, *cfg)
}

func parseSets(sets []string) (map[string]any, error) {
	values := make(map[string]any)
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q, expected name=value", s)
		}
		key := forms.ValueKey(name)
		switch prev := values[key].(type) {
		case nil:
			if forms.IsMultiName(name) {
				values[key] = []string{value}
			} else {
				values[key] = value
			}
		case string:
			values[key] = []string{prev, value}
		case []string:
			values[key] = append(prev, value)
		}
	}
	return values, nil
}
