package jobspec

import (
	"bytes"
	"os"
	"text/template"

	"github.com/pkg/errors"
	batchv1 "k8s.io/api/batch/v1"
	"k8s.io/apimachinery/pkg/util/yaml"

	"github.com/G-Research/resetbench/internal/common/benchmarkerrors"
)

// Parameters are substituted into the job template when a job is rendered.
type Parameters struct {
	NodeName   string
	Threshold  string
	NamePrefix string
	RunId      string
	Batch      int
}

// Template is a parsed Kubernetes Job manifest, in YAML or JSON, containing text/template actions.
type Template struct {
	name string
	tmpl *template.Template
}

// LoadTemplate reads and parses the template at path.
func LoadTemplate(path string) (*Template, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.WithStack(&benchmarkerrors.ErrNotFound{Type: "job template", Value: path})
	} else if err != nil {
		return nil, errors.WithStack(err)
	}
	return ParseTemplate(path, string(content))
}

func ParseTemplate(name string, content string) (*Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(content)
	if err != nil {
		return nil, errors.WithStack(&benchmarkerrors.ErrInvalidArgument{
			Name:    "job.templatePath",
			Value:   name,
			Message: err.Error(),
		})
	}
	return &Template{name: name, tmpl: tmpl}, nil
}

// Render executes the template with params and decodes the result into a Job.
func (t *Template) Render(params Parameters) (*batchv1.Job, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, params); err != nil {
		return nil, errors.Wrapf(err, "rendering job template %s", t.name)
	}
	job := &batchv1.Job{}
	if err := yaml.NewYAMLOrJSONDecoder(&buf, 4096).Decode(job); err != nil {
		return nil, errors.Wrapf(err, "decoding rendered job template %s", t.name)
	}
	if job.Kind != "" && job.Kind != "Job" {
		return nil, errors.Errorf("job template %s renders a %s rather than a Job", t.name, job.Kind)
	}
	if len(job.Spec.Template.Spec.Containers) == 0 {
		return nil, errors.Errorf("job template %s has no containers", t.name)
	}
	return job, nil
}
