package catalog

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// YamlSink writes each full mutation as a multi-document catalog-info YAML file.
// The file is written to a temp file and renamed over the target, so readers
// see either the previous or the new snapshot.
type YamlSink struct {
	mu   sync.Mutex
	path string
}

func NewYamlSink(path string) *YamlSink {
	return &YamlSink{path: path}
}

func (s *YamlSink) ApplyMutation(ctx context.Context, mutation *Mutation) (err error) {
	if mutation.Type != FullMutation {
		err = fmt.Errorf("yaml sink: unsupported mutation type \"%s\"", mutation.Type)
		return
	}

	var buf bytes.Buffer
	var enc = yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, de := range mutation.Entities {
		if err = ctx.Err(); err != nil {
			return
		}
		if err = enc.Encode(de.Entity); err != nil {
			return
		}
	}
	if err = enc.Close(); err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var dir = filepath.Dir(s.path)
	var tmp *os.File
	if tmp, err = os.CreateTemp(dir, ".catalog-*.yaml"); err != nil {
		return
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return
	}
	if err = tmp.Close(); err != nil {
		return
	}
	err = os.Rename(tmp.Name(), s.path)
	return
}
