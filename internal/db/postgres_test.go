package db

import "testing"

func TestMigrationURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/coach":   "pgx5://u:p@localhost:5432/coach",
		"postgresql://u:p@localhost:5432/coach": "pgx5://u:p@localhost:5432/coach",
		"pgx5://u:p@localhost:5432/coach":       "pgx5://u:p@localhost:5432/coach",
		"u:p@localhost:5432/coach":              "pgx5://u:p@localhost:5432/coach",
	}
	for in, want := range cases {
		if got := MigrationURL(in); got != want {
			t.Errorf("MigrationURL(%q) = %q, want %q", in, got, want)
		}
	}
}
