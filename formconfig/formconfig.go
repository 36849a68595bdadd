// Package formconfig reads form definitions from YAML or JSON files.
//
// A definition is either a mapping of field names to field records, making a
// single fieldset, or a full form:
//
//	action: /signup
//	method: post
//	attributes: {id: signup}
//	filters: [trim, {name: strip_tags, exclude_by_type: [password]}]
//	columns: {left: [0], right: [1, 2]}
//	fieldsets:
//	  - legend: Account
//	    container: table
//	    fields:
//	      email: {type: email, label: Email, required: true, validators: [email]}
//	  - groups:
//	      - {first: {type: text}, last: {type: text}}
//	      - {bio: {type: textarea}}
//
// Field order follows the file. JSON files may contain comments and trailing
// commas.
package formconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andreyvit/jsonfix"
	"gopkg.in/yaml.v3"

	"github.com/andreyvit/formkit/filters"
	"github.com/andreyvit/formkit/forms"
	"github.com/andreyvit/formkit/rules"
)

var (
	ErrUnknownKey = errors.New("unknown key")
	ErrShape      = errors.New("unexpected value")
)

const (
	YAML = "yaml"
	JSON = "json"
)

// Load reads a definition file; files ending in .json are read as JSON,
// everything else as YAML.
func Load(path string) (*forms.FormConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format := YAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = JSON
	}
	cfg, err := Parse(raw, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte, format string) (*forms.FormConfig, error) {
	if format == JSON {
		data = jsonfix.Bytes(data)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return &forms.FormConfig{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, shapeErr(root, "a mapping")
	}
	if !hasKey(root, "fieldsets") && !hasKey(root, "fields") && !hasKey(root, "action") {
		fields, err := parseFields(root)
		if err != nil {
			return nil, err
		}
		return &forms.FormConfig{Fieldsets: []forms.FieldsetConfig{{Groups: [][]forms.FieldConfig{fields}}}}, nil
	}
	return parseForm(root)
}

func shapeErr(n *yaml.Node, want string) error {
	return fmt.Errorf("line %d: %w: expected %s", n.Line, ErrShape, want)
}

func hasKey(n *yaml.Node, key string) bool {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

// each calls f for every key/value pair of a mapping, in file order.
func each(n *yaml.Node, f func(key string, v *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return shapeErr(n, "a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := f(n.Content[i].Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func parseForm(root *yaml.Node) (*forms.FormConfig, error) {
	cfg := &forms.FormConfig{}
	err := each(root, func(key string, v *yaml.Node) error {
		var err error
		switch key {
		case "action":
			cfg.Action = v.Value
		case "method":
			cfg.Method = v.Value
		case "attributes":
			cfg.Attributes, err = parseAttrs(v)
		case "columns":
			cfg.Columns, err = parseColumns(v)
		case "filters":
			cfg.Filters, err = parseFilters(v)
		case "fields":
			var fields []forms.FieldConfig
			fields, err = parseFields(v)
			cfg.Fieldsets = append(cfg.Fieldsets, forms.FieldsetConfig{Groups: [][]forms.FieldConfig{fields}})
		case "fieldsets":
			if v.Kind != yaml.SequenceNode {
				return shapeErr(v, "a list of fieldsets")
			}
			for _, item := range v.Content {
				fs, err := parseFieldset(item)
				if err != nil {
					return err
				}
				cfg.Fieldsets = append(cfg.Fieldsets, *fs)
			}
		default:
			return fmt.Errorf("line %d: %w %q", v.Line, ErrUnknownKey, key)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseFieldset(n *yaml.Node) (*forms.FieldsetConfig, error) {
	fs := &forms.FieldsetConfig{}
	err := each(n, func(key string, v *yaml.Node) error {
		switch key {
		case "legend":
			fs.Legend = v.Value
		case "container":
			fs.Container = v.Value
		case "attributes":
			attrs, err := parseAttrs(v)
			fs.Attributes = attrs
			return err
		case "fields":
			fields, err := parseFields(v)
			fs.Groups = append(fs.Groups, fields)
			return err
		case "groups":
			if v.Kind != yaml.SequenceNode {
				return shapeErr(v, "a list of field mappings")
			}
			for _, item := range v.Content {
				fields, err := parseFields(item)
				if err != nil {
					return err
				}
				fs.Groups = append(fs.Groups, fields)
			}
		default:
			return fmt.Errorf("line %d: %w %q", v.Line, ErrUnknownKey, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fs, nil
}

func parseFields(n *yaml.Node) ([]forms.FieldConfig, error) {
	var result []forms.FieldConfig
	err := each(n, func(name string, v *yaml.Node) error {
		fc, err := parseField(name, v)
		if err != nil {
			return err
		}
		result = append(result, *fc)
		return nil
	})
	return result, err
}

func fieldErr(name, key string, err error) error {
	return &forms.ConfigError{Field: name, Key: key, Err: err}
}

func parseField(name string, n *yaml.Node) (*forms.FieldConfig, error) {
	fc := &forms.FieldConfig{Name: name}
	err := each(n, func(key string, v *yaml.Node) error {
		var err error
		switch key {
		case "type":
			fc.Type = v.Value
		case "value":
			fc.Value = scalarOrList(v)
		case "values":
			if v.Kind == yaml.ScalarNode {
				fc.Preset = v.Value
			} else {
				fc.Values, err = parseChoices(v)
			}
		case "label":
			fc.Label = v.Value
		case "label-attributes":
			fc.LabelAttributes, err = parseAttrs(v)
		case "hint":
			fc.Hint = v.Value
		case "hint-attributes":
			fc.HintAttributes, err = parseAttrs(v)
		case "indent":
			fc.Indent = v.Value
		case "checked", "selected":
			fc.Checked = scalarOrList(v)
		case "required":
			err = v.Decode(&fc.Required)
		case "required_message":
			fc.RequiredMessage = v.Value
		case "disabled":
			err = v.Decode(&fc.Disabled)
		case "readonly":
			err = v.Decode(&fc.Readonly)
		case "attributes":
			fc.Attributes, err = parseAttrs(v)
		case "validators":
			err = parseValidators(fc, v)
		case "render":
			err = v.Decode(&fc.Render)
		case "expire":
			var secs int
			err = v.Decode(&secs)
			fc.Expire = time.Duration(secs) * time.Second
		case "captcha":
			fc.Captcha = v.Value
		case "answer":
			fc.Answer = v.Value
		case "min":
			fc.Min = v.Value
		case "max":
			fc.Max = v.Value
		case "xml":
			fc.XML = v.Value
		case "prepend":
			fc.Prepend = v.Value
		case "append":
			fc.Append = v.Value
		case "error":
			fc.ErrorPre = v.Value == "pre"
		case "legend":
			fc.Legend = v.Value
		case "acl":
			fc.ACL = v.Value
		default:
			return fieldErr(name, key, ErrUnknownKey)
		}
		if err != nil {
			var cerr *forms.ConfigError
			if errors.As(err, &cerr) {
				return err
			}
			return fieldErr(name, key, fmt.Errorf("line %d: %w", v.Line, err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if fc.XML != "" && fc.Preset == "" {
		return nil, fieldErr(name, "values", fmt.Errorf("%w: xml needs a set name", forms.ErrMissingKey))
	}
	if fc.Type == "" {
		return nil, fieldErr(name, "type", forms.ErrMissingKey)
	}
	return fc, nil
}

func scalarOrList(v *yaml.Node) any {
	if v.Kind == yaml.SequenceNode {
		result := make([]string, 0, len(v.Content))
		for _, item := range v.Content {
			result = append(result, item.Value)
		}
		return result
	}
	if v.Tag == "!!bool" {
		b, _ := strconv.ParseBool(v.Value)
		return b
	}
	return v.Value
}

func parseAttrs(n *yaml.Node) (forms.Attrs, error) {
	attrs := make(forms.Attrs)
	err := each(n, func(key string, v *yaml.Node) error {
		if v.Kind != yaml.ScalarNode {
			return shapeErr(v, "a scalar attribute value")
		}
		attrs[key] = v.Value
		return nil
	})
	return attrs, err
}

// parseChoices reads a mapping of keys to labels, where a nested mapping is an
// optgroup, or a list of keys that double as labels.
func parseChoices(n *yaml.Node) (forms.Choices, error) {
	if n.Kind == yaml.SequenceNode {
		keys := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			keys = append(keys, item.Value)
		}
		return forms.Options(keys...), nil
	}
	var result forms.Choices
	err := each(n, func(key string, v *yaml.Node) error {
		if v.Kind == yaml.ScalarNode {
			result = append(result, forms.Choice{Key: key, Label: v.Value})
			return nil
		}
		group, err := parseChoices(v)
		if err != nil {
			return err
		}
		result = append(result, forms.Optgroup(key, group))
		return nil
	})
	return result, err
}

// parseValidators reads a rule or a list of rules in rules.Parse syntax. The
// pseudo-rule "required" sets the required flag instead.
func parseValidators(fc *forms.FieldConfig, n *yaml.Node) error {
	specs := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		specs = n.Content
	}
	for _, s := range specs {
		if s.Kind != yaml.ScalarNode {
			return shapeErr(s, "a validator name")
		}
		if s.Value == "required" {
			fc.Required = true
			continue
		}
		v, err := rules.Parse(s.Value)
		if err != nil {
			return err
		}
		fc.Validators = append(fc.Validators, v)
	}
	return nil
}

func parseColumns(n *yaml.Node) ([]forms.Column, error) {
	var result []forms.Column
	err := each(n, func(class string, v *yaml.Node) error {
		var indices []int
		if err := v.Decode(&indices); err != nil {
			return fmt.Errorf("line %d: column %q: %w", v.Line, class, err)
		}
		result = append(result, forms.Column{Class: class, Fieldsets: indices})
		return nil
	})
	return result, err
}

// parseFilters reads a list of filter names or filters.Config records.
func parseFilters(n *yaml.Node) ([]filters.Filter, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, shapeErr(n, "a list of filters")
	}
	var result []filters.Filter
	for _, item := range n.Content {
		var cfg filters.Config
		if item.Kind == yaml.ScalarNode {
			cfg.Name = item.Value
		} else if err := item.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("line %d: %w", item.Line, err)
		}
		f, err := filters.Lookup(cfg)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", item.Line, err)
		}
		result = append(result, f)
	}
	return result, nil
}
