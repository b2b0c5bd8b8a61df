package util

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ParseYAMLFile reads a file and parses it as YAML, using the provided object.
func ParseYAMLFile(destination interface{}, path string) error {
	log.WithFields(log.Fields{
		"datatype": fmt.Sprintf("%T", destination),
		"path":     path,
	}).Trace("Parsing YAML file")

	dat, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read file")
	}
	if err := yaml.Unmarshal(dat, destination); err != nil {
		return errors.Wrapf(err, "failed to parse file %v", path)
	}

	return nil
}
