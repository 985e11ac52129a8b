package fixtures

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	set, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set != Defaults() {
		t.Fatalf("expected defaults, got %#v", set)
	}
}

func TestLoadYAMLOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "fixtures.yaml", `
register:
  email: qa@example.com
  role: shelter
shelter_profile:
  capacity: 120
  accepts_donations: false
`)
	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.Register.Email != "qa@example.com" || set.Register.Role != "SHELTER" {
		t.Fatalf("unexpected register payload %#v", set.Register)
	}
	if set.Register.Password != "123456" {
		t.Fatalf("expected default password to survive overlay, got %q", set.Register.Password)
	}
	if set.Shelter.Capacity != 120 || set.Shelter.AcceptsDonations {
		t.Fatalf("unexpected shelter payload %#v", set.Shelter)
	}
	if set.Shelter.ShelterName != "Test Shelter Name" {
		t.Fatalf("expected default shelter name, got %q", set.Shelter.ShelterName)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "fixtures.json", `{"register":{"fullName":"JSON User"},"shelter_profile":{"currentOccupancy":3}}`)
	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.Register.FullName != "JSON User" || set.Shelter.CurrentOccupancy != 3 {
		t.Fatalf("unexpected set %#v", set)
	}
}

func TestLoadRejectsInvalidPayloads(t *testing.T) {
	cases := map[string]string{
		"capacity": "shelter_profile:\n  capacity: 0\n",
		"email":    "register:\n  email: nobody\n",
		"garbage":  "register: [1, 2",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeFile(t, "f.yaml", content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestValidationNamesTheKeyTheFileUsed(t *testing.T) {
	cases := map[string]struct {
		file, content, want string
	}{
		"json full name": {"f.json", `{"register":{"fullName":""}}`, "fullName"},
		"json phone":     {"f.json", `{"register":{"phoneNumber":""}}`, "phoneNumber"},
		"json occupancy": {"f.json", `{"shelter_profile":{"currentOccupancy":-1}}`, "currentOccupancy"},
		"yaml full name": {"f.yaml", "register:\n  full_name: \"\"\n", "full_name"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.file, tc.content))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error to mention %q, got %v", tc.want, err)
			}
		})
	}
}

func TestUniqueEmail(t *testing.T) {
	if got := UniqueEmail("testuser@example.com", "ab12"); got != "testuser+ab12@example.com" {
		t.Fatalf("unexpected email %q", got)
	}
	if got := UniqueEmail("invalid", "ab12"); got != "invalid" {
		t.Fatalf("expected unchanged email, got %q", got)
	}
}
