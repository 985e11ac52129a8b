package fixtures

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/techwiz-hq/api-smoke-harness/internal/api"
	"gopkg.in/yaml.v3"
)

// Package fixtures holds the request payloads the profile flow sends.

// Set is the full payload set for one profile-flow run.
type Set struct {
	Register api.RegisterRequest `json:"register" yaml:"register"`
	Shelter  api.ShelterProfile  `json:"shelter_profile" yaml:"shelter_profile"`
}

// Defaults returns the payloads used when no fixtures file is configured.
func Defaults() Set {
	return Set{
		Register: api.RegisterRequest{
			Email:       "testuser@example.com",
			Password:    "123456",
			FullName:    "Test User",
			PhoneNumber: "0123456789",
			Role:        "SHELTER",
		},
		Shelter: api.ShelterProfile{
			ShelterName:       "Test Shelter Name",
			Address:           "123 Test Address",
			ContactPersonName: "Test Contact Person",
			Capacity:          50,
			CurrentOccupancy:  10,
			AcceptsDonations:  true,
			OperatingHours:    "Mon-Fri 9AM-5PM",
		},
	}
}

// Load returns Defaults overlaid with the YAML/JSON file at path. An empty
// path yields the defaults unchanged.
func Load(path string) (Set, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Defaults(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return Set{}, fmt.Errorf("open fixtures file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return Set{}, fmt.Errorf("read fixtures file: %w", err)
	}

	set, err := parseFixtures(raw, filepath.Ext(path))
	if err != nil {
		return Set{}, err
	}
	set = sanitize(set)
	if err := set.Validate(); err != nil {
		return Set{}, fmt.Errorf("fixtures %s: %w", path, err)
	}
	return set, nil
}

// parseFixtures decodes data by extension, or tries YAML then JSON when the extension is unknown.
func parseFixtures(data []byte, ext string) (Set, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	known := false
	for _, d := range decoders {
		if ext == d.ext {
			known = true
		}
	}

	var lastErr error
	for _, d := range decoders {
		if known && ext != d.ext {
			continue
		}
		set := Defaults()
		if err := d.fn(data, &set); err != nil {
			lastErr = fmt.Errorf("decode %s fixtures: %w", d.name, err)
			continue
		}
		return set, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no decoder matched")
	}
	return Set{}, fmt.Errorf("fixtures file format not recognized (expected YAML or JSON): %w", lastErr)
}

func sanitize(s Set) Set {
	s.Register.Email = strings.TrimSpace(s.Register.Email)
	s.Register.FullName = strings.TrimSpace(s.Register.FullName)
	s.Register.PhoneNumber = strings.TrimSpace(s.Register.PhoneNumber)
	s.Register.Role = strings.ToUpper(strings.TrimSpace(s.Register.Role))
	s.Shelter.ShelterName = strings.TrimSpace(s.Shelter.ShelterName)
	s.Shelter.Address = strings.TrimSpace(s.Shelter.Address)
	s.Shelter.ContactPersonName = strings.TrimSpace(s.Shelter.ContactPersonName)
	s.Shelter.OperatingHours = strings.TrimSpace(s.Shelter.OperatingHours)
	return s
}

// Validate applies the same checks the backend runs on these payloads.
func (s Set) Validate() error {
	switch {
	case s.Register.Email == "" || !strings.Contains(s.Register.Email, "@"):
		return fmt.Errorf("register.email %q is not an email address", s.Register.Email)
	case s.Register.Password == "":
		return errors.New("register.password is required")
	case s.Register.FullName == "":
		return errors.New("register.full_name (fullName) is required")
	case s.Register.PhoneNumber == "":
		return errors.New("register.phone_number (phoneNumber) is required")
	case s.Shelter.Capacity < 1:
		return fmt.Errorf("shelter_profile.capacity must be at least 1, got %d", s.Shelter.Capacity)
	case s.Shelter.CurrentOccupancy < 0:
		return fmt.Errorf("shelter_profile.current_occupancy (currentOccupancy) must not be negative, got %d", s.Shelter.CurrentOccupancy)
	}
	return nil
}

// UniqueEmail tags the local part of email with suffix (plus addressing),
// so repeated runs do not collide on an already registered address.
func UniqueEmail(email, suffix string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 || suffix == "" {
		return email
	}
	return email[:at] + "+" + suffix + email[at:]
}
