package output

import "testing"

type symbolEntry struct {
	File string
	Name string
	Line int
}

func TestMultiFieldSort(t *testing.T) {
	rows := func() []symbolEntry {
		return []symbolEntry{
			{File: "b.js", Name: "zeta", Line: 10},
			{File: "a.js", Name: "alpha", Line: 30},
			{File: "b.js", Name: "alpha", Line: 5},
			{File: "a.js", Name: "alpha", Line: 2},
		}
	}

	t.Run("file then line", func(t *testing.T) {
		s := rows()
		err := MultiFieldSort(&s, []SortCriteria{{Field: "File"}, {Field: "Line"}})
		if err != nil {
			t.Fatalf("MultiFieldSort() error = %v", err)
		}
		want := []symbolEntry{
			{File: "a.js", Name: "alpha", Line: 2},
			{File: "a.js", Name: "alpha", Line: 30},
			{File: "b.js", Name: "alpha", Line: 5},
			{File: "b.js", Name: "zeta", Line: 10},
		}
		for i := range want {
			if s[i] != want[i] {
				t.Fatalf("s[%d] = %+v, want %+v", i, s[i], want[i])
			}
		}
	})

	t.Run("descending", func(t *testing.T) {
		s := rows()
		if err := MultiFieldSort(&s, []SortCriteria{{Field: "Line", Descending: true}}); err != nil {
			t.Fatalf("MultiFieldSort() error = %v", err)
		}
		if s[0].Line != 30 || s[3].Line != 2 {
			t.Errorf("descending order = %+v", s)
		}
	})

	t.Run("stable on ties", func(t *testing.T) {
		s := rows()
		if err := MultiFieldSort(&s, []SortCriteria{{Field: "Name"}}); err != nil {
			t.Fatalf("MultiFieldSort() error = %v", err)
		}
		// The three alphas keep their input order.
		if s[0].File != "a.js" || s[0].Line != 30 {
			t.Errorf("first alpha = %+v, want the original first alpha", s[0])
		}
	})

	t.Run("not a pointer", func(t *testing.T) {
		s := rows()
		if err := MultiFieldSort(s, []SortCriteria{{Field: "Name"}}); err == nil {
			t.Error("value slice should be rejected")
		}
	})

	t.Run("no criteria", func(t *testing.T) {
		s := rows()
		if err := MultiFieldSort(&s, nil); err == nil {
			t.Error("empty criteria should be rejected")
		}
	})

	t.Run("unknown field keeps order", func(t *testing.T) {
		s := rows()
		if err := MultiFieldSort(&s, []SortCriteria{{Field: "Nope"}}); err != nil {
			t.Fatalf("MultiFieldSort() error = %v", err)
		}
		orig := rows()
		for i := range orig {
			if s[i] != orig[i] {
				t.Fatalf("order changed on an unknown field: %+v", s)
			}
		}
	})
}

func TestMultiFieldSortPointerElems(t *testing.T) {
	s := []*symbolEntry{
		{File: "b.js", Line: 1},
		{File: "a.js", Line: 2},
	}
	if err := MultiFieldSort(&s, []SortCriteria{{Field: "File"}}); err != nil {
		t.Fatalf("MultiFieldSort() error = %v", err)
	}
	if s[0].File != "a.js" {
		t.Errorf("s[0] = %+v, want a.js first", s[0])
	}
}
