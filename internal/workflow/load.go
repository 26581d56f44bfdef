package workflow

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse разбирает определение процесса из YAML.
//
// Разбор строгий: неизвестные поля — ошибка. Опечатка в имени поля
// (`requries`, `timout_sec`) иначе молча меняла бы поведение запуска.
func Parse(data []byte) (*Workflow, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDefinition
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var wf Workflow
	if err := dec.Decode(&wf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDefinition
		}
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return &wf, nil
}

// Load читает и разбирает определение из потока.
func Load(r io.Reader) (*Workflow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	return Parse(data)
}

// LoadFile читает и разбирает определение из файла.
func LoadFile(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	wf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wf, nil
}
