package convert

import (
	"strings"
	"testing"

	"factbatch/common"
	"factbatch/config"
)

func TestNewValues(t *testing.T) {
	cfg := &config.OutputConfig{Compression: common.CompressionZstd}
	v := newValues("idx/part2.yml.gz", eventSource{format: common.EventFormatYaml, compression: common.CompressionGzip}, "ref", 10, 7, cfg)

	want := Values{
		SourceFile:  "part2",
		SourceDir:   "idx",
		Format:      "yaml",
		Compression: "zstd",
		RefID:       "ref",
		Events:      10,
		Facts:       7,
	}
	if v != want {
		t.Errorf("newValues() = %+v, want %+v", v, want)
	}

	if v := newValues("events.jsonl", eventSource{}, "", 0, 0, &config.OutputConfig{}); v.SourceDir != "." {
		t.Errorf("SourceDir = %q, want .", v.SourceDir)
	}
}

func TestExpandTemplate(t *testing.T) {
	values := Values{
		SourceFile:  "part2",
		SourceDir:   "idx",
		Format:      "json",
		Compression: "none",
		RefID:       "0190-abc",
		Events:      12,
		Facts:       9,
	}

	tests := []struct {
		name     string
		template string
		want     string
		wantErr  string
	}{
		{"plain", "{{ .SourceFile }}", "part2", ""},
		{"context", "{{ .Context }}", string(config.OutputNameTemplateFieldName), ""},
		{"sprig functions", `{{ .SourceFile | upper }}-{{ .Facts | printf "%05d" }}`, "PART2-00009", ""},
		{"subdirectories", "{{ .SourceDir }}/{{ .Format }}/{{ .SourceFile }}", "idx/json/part2", ""},
		{"conditional", `{{ if gt .Events 10 }}big{{ else }}small{{ end }}`, "big", ""},
		{"ref id", `{{ .RefID | trunc 4 }}`, "0190", ""},
		{"parse error", "{{ .SourceFile", "", "unable to parse template field"},
		{"unknown field", "{{ .Title }}", "", "Title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandTemplate(values, config.OutputNameTemplateFieldName, tt.template)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expandTemplate() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("expandTemplate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}
