package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TemplateFile - формат файла со своей системной инструкцией:
//
//	system: |
//	  You translate into {{targetLang}} for a legal audience.
type TemplateFile struct {
	System string `yaml:"system"`
}

// LoadTemplate читает свой шаблон из path.
// Отсутствующий файл - не ошибка, возвращается пустой шаблон.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read prompt template: %w", err)
	}

	var tf TemplateFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return "", fmt.Errorf("parse prompt template %s: %w", path, err)
	}

	if strings.TrimSpace(tf.System) == "" {
		return "", nil
	}
	if !strings.Contains(tf.System, LanguagePlaceholder) {
		return "", fmt.Errorf("prompt template %s: missing %s placeholder", path, LanguagePlaceholder)
	}
	return tf.System, nil
}
