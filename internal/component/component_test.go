package component

import (
	"path/filepath"
	"testing"

	"github.com/hlop3z/swan/internal/alerr"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in       string
		wantType string
		wantName string
	}{
		{"", "core", ""},
		{"moodle", "core", ""},
		{"core", "core", ""},
		{"core_message", "core", "message"},
		{"moodle_user", "core", "user"},
		{"message", "core", "message"},
		{"forum", "mod", "forum"},
		{"mod_forum", "mod", "forum"},
		{"local_example", "local", "example"},
		{"tool_swan", "tool", "swan"},
		{"block_html", "block", "html"},
		{"local_my_plugin", "local", "my_plugin"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			typ, name := Normalize(tt.in)
			if typ != tt.wantType || name != tt.wantName {
				t.Errorf("Normalize(%q) = %q, %q; want %q, %q", tt.in, typ, name, tt.wantType, tt.wantName)
			}
		})
	}
}

func TestDir(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"core", "lib"},
		{"local_example", "local/example"},
		{"tool_swan", "admin/tool/swan"},
		{"block_html", "blocks/html"},
		{"forum", "mod/forum"},
		{"qtype_essay", "question/type/essay"},
		{"logstore_standard", "admin/tool/log/store/standard"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Dir(tt.in)
			if err != nil {
				t.Fatalf("Dir(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Dir(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDirUnknownType(t *testing.T) {
	_, err := Dir("locl_example")
	if !alerr.Is(err, alerr.ErrUnknownComponent) {
		t.Fatalf("error = %v, want E4002", err)
	}
	helps := err.(*alerr.Error).Helps()
	if len(helps) != 1 || helps[0] != "did you mean 'local'?" {
		t.Errorf("helps = %v", helps)
	}
}

func TestInfer(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "var", "www", "moodle")
	tests := []struct {
		name    string
		cwd     string
		want    string
		wantDir string
	}{
		{"plugin root", filepath.Join(root, "local", "example"), "local_example", "local/example"},
		{"nested dir", filepath.Join(root, "local", "example", "classes", "persistent"), "local_example", "local/example"},
		{"admin tool", filepath.Join(root, "admin", "tool", "swan"), "tool_swan", "admin/tool/swan"},
		{"deepest wins", filepath.Join(root, "admin", "tool", "log", "store", "database", "db"), "logstore_database", "admin/tool/log/store/database"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dir, err := Infer(tt.cwd, root)
			if err != nil {
				t.Fatalf("Infer() error = %v", err)
			}
			if got != tt.want || dir != tt.wantDir {
				t.Errorf("Infer() = %q, %q; want %q, %q", got, dir, tt.want, tt.wantDir)
			}
		})
	}
}

func TestInferOutsidePlugin(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "var", "www", "moodle")
	for _, cwd := range []string{root, filepath.Join(root, "local"), filepath.Join(root, "lib", "db"), "/tmp"} {
		if _, _, err := Infer(cwd, root); !alerr.Is(err, alerr.ErrUnknownComponent) {
			t.Errorf("Infer(%q) error = %v, want E4002", cwd, err)
		}
	}
}
