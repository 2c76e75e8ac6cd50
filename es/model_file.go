package es

import (
	"image/color"
	"io/fs"
	"strconv"
	"strings"

	"github.com/plus3/impstack/scene"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// nodeSpec is the YAML form of a model:
//
//	name: ship
//	shape: {width: 16, height: 24, color: "#ff8800"}
//	translation: [0, 0, 0]
//	yaw: 0
//	children:
//	  - name: flame
//	    shape: {width: 4, height: 6, color: "#ffcc00"}
//	    translation: [0, -14, 0]
type nodeSpec struct {
	Name        string      `yaml:"name"`
	Shape       *shapeSpec  `yaml:"shape"`
	Translation []float32   `yaml:"translation"`
	Yaw         float32     `yaml:"yaw"`
	Children    []*nodeSpec `yaml:"children"`
}

type shapeSpec struct {
	Width  float32   `yaml:"width"`
	Height float32   `yaml:"height"`
	Color  yamlColor `yaml:"color"`
}

type yamlColor color.RGBA

func (c *yamlColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return eris.New("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 && len(s) != 8 {
		return eris.Errorf("invalid color format: %s", value.Value)
	}
	if len(s) == 6 {
		s += "ff"
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return eris.Wrapf(err, "invalid color %s", value.Value)
	}
	*c = yamlColor{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return nil
}

func (s *nodeSpec) build() (*scene.Node, error) {
	node := scene.NewNode(s.Name)
	if s.Shape != nil {
		node.Shape = &scene.Shape{Width: s.Shape.Width, Height: s.Shape.Height, Color: color.RGBA(s.Shape.Color)}
	}

	switch len(s.Translation) {
	case 0:
	case 2, 3:
		var v scene.Vec3
		v.X, v.Y = s.Translation[0], s.Translation[1]
		if len(s.Translation) == 3 {
			v.Z = s.Translation[2]
		}
		node.SetLocalTranslation(v)
	default:
		return nil, eris.Errorf("node %q: translation needs 2 or 3 values, got %d", s.Name, len(s.Translation))
	}
	if s.Yaw != 0 {
		node.SetLocalRotation(scene.QuatFromYaw(s.Yaw))
	}

	for _, child := range s.Children {
		c, err := child.build()
		if err != nil {
			return nil, err
		}
		node.AttachChild(c)
	}
	return node, nil
}

// ParseModel builds a node tree from its YAML description.
func ParseModel(data []byte) (*scene.Node, error) {
	var spec nodeSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, eris.Wrap(err, "unmarshal model")
	}
	return spec.build()
}

// FSLoader returns a Loader reading YAML model files from fsys.
func FSLoader(fsys fs.FS) Loader {
	return func(path string) (*scene.Node, error) {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, eris.Wrapf(err, "load model %s", path)
		}
		node, err := ParseModel(data)
		if err != nil {
			return nil, eris.Wrapf(err, "parse model %s", path)
		}
		return node, nil
	}
}
