package target

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nace/disksetup/internal/system"
)

// DefaultConfigPath is read when no configuration file is given
const DefaultConfigPath = "/etc/disksetup/setupcfg.yml"

// document is one YAML document of the configuration file
type document struct {
	ID      string         `yaml:"id" validate:"required"`
	Crypt   *cryptDocument `yaml:"crypt"`
	Mount   *mountDocument `yaml:"mount"`
	Options []string       `yaml:"options" validate:"dive,oneof=nomount ro"`
	Targets []string       `yaml:"targets" validate:"dive,required"`
}

type cryptDocument struct {
	Name    string `yaml:"name" validate:"required"`
	Device  string `yaml:"device" validate:"required_with=Keyfile"`
	Keyfile string `yaml:"keyfile"`
}

type mountDocument struct {
	Device string `yaml:"device"`
	Dir    string `yaml:"dir"`
}

// Keys accepted in each mapping of a document
var (
	documentKeys = []string{"id", "crypt", "mount", "options", "targets"}
	cryptKeys    = []string{"name", "device", "keyfile"}
	mountKeys    = []string{"device", "dir"}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report yaml field names rather than Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads the configuration file at path and builds the registry
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, system.Wrap(system.KindConfig, err, "failed to open configuration")
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes a stream of YAML documents, one target per document
func Parse(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)

	var defs []Definition
	for index := 1; ; index++ {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, system.Wrap(system.KindConfig, err, "config document %d", index)
		}

		def, err := decodeDocument(&node, index)
		if err != nil {
			return nil, err
		}
		if def != nil {
			defs = append(defs, def)
		}
	}

	return NewRegistry(defs)
}

// decodeDocument turns one document node into a definition. Empty
// documents yield nil.
func decodeDocument(node *yaml.Node, index int) (Definition, error) {
	body := node
	if body.Kind == yaml.DocumentNode {
		if len(body.Content) == 0 {
			return nil, nil
		}
		body = body.Content[0]
	}
	if body.Kind == yaml.ScalarNode && body.Tag == "!!null" {
		return nil, nil
	}
	if body.Kind != yaml.MappingNode {
		return nil, system.ConfigErrorf("config document %d: expected a mapping", index)
	}

	if err := checkStructure(body, index); err != nil {
		return nil, err
	}

	var doc document
	if err := body.Decode(&doc); err != nil {
		return nil, system.Wrap(system.KindConfig, err, "config document %d", index)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, system.ConfigErrorf("config document %d: %s", index, describeValidation(err, doc.ID))
	}

	// A targets key, even empty or null, makes the document a group
	if hasKey(body, "targets") {
		if doc.Crypt != nil || doc.Mount != nil || len(doc.Options) > 0 {
			return nil, system.ConfigErrorf("group %q cannot define crypt, mount or options", doc.ID)
		}
		return NewGroup(doc.ID, doc.Targets...), nil
	}

	var crypt *CryptSpec
	if doc.Crypt != nil {
		crypt = &CryptSpec{
			Name:    doc.Crypt.Name,
			Device:  cleanPath(doc.Crypt.Device),
			Keyfile: doc.Crypt.Keyfile,
		}
	}
	var mount *MountSpec
	if doc.Mount != nil {
		mount = &MountSpec{
			Device: cleanPath(doc.Mount.Device),
			Dir:    cleanPath(doc.Mount.Dir),
		}
	}
	options := make([]Option, 0, len(doc.Options))
	for _, o := range doc.Options {
		options = append(options, Option(o))
	}

	return NewLeaf(doc.ID, crypt, mount, NewOptionSet(options...)), nil
}

// checkStructure rejects keys the document format does not know and
// crypt or mount layers that are present but empty
func checkStructure(body *yaml.Node, index int) error {
	if err := checkKeys(body, documentKeys, "", index); err != nil {
		return err
	}
	for i := 0; i+1 < len(body.Content); i += 2 {
		key, value := body.Content[i].Value, body.Content[i+1]
		var allowed []string
		switch key {
		case "crypt":
			allowed = cryptKeys
		case "mount":
			allowed = mountKeys
		default:
			continue
		}
		if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
			return system.ConfigErrorf("config document %d: line %d: %s is empty", index, value.Line, key)
		}
		if value.Kind != yaml.MappingNode {
			return system.ConfigErrorf("config document %d: line %d: %s must be a mapping", index, value.Line, key)
		}
		if err := checkKeys(value, allowed, key+".", index); err != nil {
			return err
		}
	}
	return nil
}

func checkKeys(mapping *yaml.Node, allowed []string, prefix string, index int) error {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i]
		if !slices.Contains(allowed, key.Value) {
			return system.ConfigErrorf("config document %d: line %d: unknown key %q (want one of: %s)",
				index, key.Line, prefix+key.Value, strings.Join(allowed, ", "))
		}
	}
	return nil
}

// cleanPath normalises a configured path so it compares equal to the
// kernel's mount table; empty stays empty
func cleanPath(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

func hasKey(mapping *yaml.Node, key string) bool {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return true
		}
	}
	return false
}

func describeValidation(err error, id string) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Namespace is "document.crypt.name"; drop the root
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "required_with":
			msgs = append(msgs, fmt.Sprintf("%s is required when %s is set", field, strings.ToLower(fe.Param())))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s: unknown option %q (want one of: %s)", field, fe.Value(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}

	out := strings.Join(msgs, "; ")
	if id != "" {
		out = fmt.Sprintf("target %q: %s", id, out)
	}
	return out
}
