package sqlstore

import "testing"

func TestRebind(t *testing.T) {
	q := `UPDATE t SET a=? WHERE b=? AND c<?`
	if got := (Dialect{}).rebind(q); got != q {
		t.Fatalf("question marks must stay: %s", got)
	}
	if got := (Dialect{Numbered: true}).rebind(q); got != `UPDATE t SET a=$1 WHERE b=$2 AND c<$3` {
		t.Fatalf("got %s", got)
	}
}

func TestSplitStatements(t *testing.T) {
	schema := `
-- comment
CREATE TABLE a (x INT);

CREATE TABLE b (y INT);
`
	got := splitStatements(schema)
	if len(got) != 2 || got[0] != "CREATE TABLE a (x INT)" || got[1] != "CREATE TABLE b (y INT)" {
		t.Fatalf("got %q", got)
	}
}
