package migrations

import (
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"testing"
)

var migrationName = regexp.MustCompile(`^(\d{6})_[a-z0-9_]+\.(up|down)\.sql$`)

func TestFiles_NamedAndPaired(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(Files(), ".")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected embedded migrations")
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		m := migrationName.FindStringSubmatch(e.Name())
		if m == nil {
			t.Errorf("migration %q does not match NNNNNN_name.(up|down).sql", e.Name())
			continue
		}
		base := strings.TrimSuffix(strings.TrimSuffix(e.Name(), ".sql"), "."+m[2])
		if m[2] == "up" {
			ups[base] = true
		} else {
			downs[base] = true
		}
	}

	for base := range ups {
		if !downs[base] {
			t.Errorf("migration %s has no down file", base)
		}
	}
}

func TestFiles_VersionsAreSequential(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(Files(), ".")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}

	seen := map[string]bool{}
	for _, e := range entries {
		if m := migrationName.FindStringSubmatch(e.Name()); m != nil {
			seen[m[1]] = true
		}
	}

	versions := make([]string, 0, len(seen))
	for v := range seen {
		versions = append(versions, v)
	}
	sort.Strings(versions)

	for i, v := range versions {
		want := strings.Repeat("0", 5) + string(rune('1'+i))
		if i < 9 && v != want {
			t.Errorf("version %d = %s, want %s", i, v, want)
		}
	}
}

func TestFiles_UsersTableHasAllColumns(t *testing.T) {
	t.Parallel()

	data, err := fs.ReadFile(Files(), "000001_create_users.up.sql")
	if err != nil {
		t.Fatalf("read users migration: %v", err)
	}
	sql := string(data)

	for _, col := range []string{
		"id", "username", "email", "first_name", "last_name",
		"bio", "avatar_url", "is_active", "created_at", "updated_at",
	} {
		if !strings.Contains(sql, "\n    "+col+" ") {
			t.Errorf("users table is missing column %q", col)
		}
	}
	if !strings.Contains(sql, "UUID PRIMARY KEY") {
		t.Error("users.id should be the UUID primary key")
	}
}
