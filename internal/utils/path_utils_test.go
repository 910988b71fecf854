package utils

import "testing"

func TestModuleFile(t *testing.T) {
	tests := []struct {
		root, module, want string
	}{
		{"scripts", "prefabs/pig", "scripts/prefabs/pig.lua"},
		{"scripts", "prefabs.pig", "scripts/prefabs/pig.lua"},
		{"scripts", "tuning.lua", "scripts/tuning.lua"},
		{".", "tuning", "tuning.lua"},
	}
	for _, tt := range tests {
		if got := ModuleFile(tt.root, tt.module); got != tt.want {
			t.Errorf("ModuleFile(%q, %q) = %q, want %q", tt.root, tt.module, got, tt.want)
		}
	}
}

func TestModulePath(t *testing.T) {
	tests := []struct {
		root, file, want string
	}{
		{"scripts", "scripts/prefabs/pig.lua", "prefabs/pig"},
		{"scripts/", "scripts/tuning.lua", "tuning"},
		{".", "tuning.lua", "tuning"},
		{"", "a/b.lua", "a/b"},
		{"scripts", "other/pig.lua", ""},
		{"scripts", "scripts/readme.txt", ""},
	}
	for _, tt := range tests {
		if got := ModulePath(tt.root, tt.file); got != tt.want {
			t.Errorf("ModulePath(%q, %q) = %q, want %q", tt.root, tt.file, got, tt.want)
		}
	}
}

func TestExtractModuleName(t *testing.T) {
	for in, want := range map[string]string{
		"prefabs/pig.lua": "pig",
		"prefabs/pig":     "pig",
		"tuning.lua":      "tuning",
	} {
		if got := ExtractModuleName(in); got != want {
			t.Errorf("ExtractModuleName(%q) = %q, want %q", in, got, want)
		}
	}
}
