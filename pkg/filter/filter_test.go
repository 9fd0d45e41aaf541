package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/smv/pkg/grammar"
	"github.com/walteh/smv/pkg/scan"
)

func day(value string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func clause(keyword string, comp grammar.Comparator, value string) grammar.FilterClause {
	return grammar.FilterClause{Keyword: keyword, Comparator: comp, Value: value}
}

func TestCompile(t *testing.T) {
	bigMD := scan.FileMeta{Name: "guide.md", Type: scan.TypeFile, Size: 2 << 20, Depth: 1, ModTime: day("2024-06-01")}
	smallMD := scan.FileMeta{Name: "note.md", Type: scan.TypeFile, Size: 500 << 10, Depth: 2, ModTime: day("2023-01-15")}
	photo := scan.FileMeta{Name: "photo.JPG", Type: scan.TypeFile, Size: 3 << 20, Depth: 1, ModTime: day("2024-06-01")}
	folder := scan.FileMeta{Name: "src", Type: scan.TypeFolder, Depth: 1, ModTime: day("2024-06-01")}

	tests := []struct {
		name    string
		clauses []grammar.FilterClause
		meta    scan.FileMeta
		want    bool
	}{
		{
			name:    "ext_and_size_selects_large_markdown",
			clauses: []grammar.FilterClause{clause("EXT", ':', "md"), clause("SIZE", '>', "1MB")},
			meta:    bigMD,
			want:    true,
		},
		{
			name:    "ext_and_size_rejects_small_markdown",
			clauses: []grammar.FilterClause{clause("EXT", ':', "md"), clause("SIZE", '>', "1MB")},
			meta:    smallMD,
			want:    false,
		},
		{
			name:    "ext_is_case_sensitive",
			clauses: []grammar.FilterClause{clause("EXT", ':', "jpg")},
			meta:    photo,
			want:    false,
		},
		{
			name:    "repeated_ext_clauses_union",
			clauses: []grammar.FilterClause{clause("EXT", ':', "md"), clause("EXT", ':', "JPG")},
			meta:    photo,
			want:    true,
		},
		{
			name:    "name_substring",
			clauses: []grammar.FilterClause{clause("NAME", ':', "uid")},
			meta:    bigMD,
			want:    true,
		},
		{
			name:    "name_glob_prefix",
			clauses: []grammar.FilterClause{clause("NAME", ':', "guide*")},
			meta:    bigMD,
			want:    true,
		},
		{
			name:    "name_glob_suffix",
			clauses: []grammar.FilterClause{clause("NAME", ':', "*.JPG")},
			meta:    photo,
			want:    true,
		},
		{
			name:    "name_glob_no_match",
			clauses: []grammar.FilterClause{clause("NAME", ':', "draft*")},
			meta:    bigMD,
			want:    false,
		},
		{
			name:    "type_folder",
			clauses: []grammar.FilterClause{clause("TYPE", ':', "folder")},
			meta:    folder,
			want:    true,
		},
		{
			name:    "type_file_rejects_folder",
			clauses: []grammar.FilterClause{clause("TYPE", ':', "file")},
			meta:    folder,
			want:    false,
		},
		{
			name:    "depth_less",
			clauses: []grammar.FilterClause{clause("DEPTH", '<', "2")},
			meta:    bigMD,
			want:    true,
		},
		{
			name:    "depth_range_intersects",
			clauses: []grammar.FilterClause{clause("DEPTH", '>', "1"), clause("DEPTH", '<', "3")},
			meta:    smallMD,
			want:    true,
		},
		{
			name:    "modified_after_day_granularity",
			clauses: []grammar.FilterClause{clause("MODIFIED", '>', "2024-01-01")},
			meta:    bigMD,
			want:    true,
		},
		{
			name:    "modified_on_the_literal_day_is_not_after",
			clauses: []grammar.FilterClause{clause("MODIFIED", '>', "2024-06-01")},
			meta:    bigMD,
			want:    false,
		},
		{
			name:    "modified_before",
			clauses: []grammar.FilterClause{clause("MODIFIED", '<', "2024-01-01")},
			meta:    smallMD,
			want:    true,
		},
		{
			name:    "empty_clause_set_selects_everything",
			clauses: nil,
			meta:    folder,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := Compile(tt.clauses)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pred(tt.meta))

			// Predicates are deterministic.
			assert.Equal(t, pred(tt.meta), pred(tt.meta))
		})
	}
}

func TestCompile_BadLiterals(t *testing.T) {
	tests := []struct {
		name   string
		clause grammar.FilterClause
	}{
		{name: "size_without_unit", clause: clause("SIZE", '>', "100")},
		{name: "size_not_a_number", clause: clause("SIZE", '>', "bigMB")},
		{name: "size_fractional", clause: clause("SIZE", '>', "1.5MB")},
		{name: "date_wrong_format", clause: clause("MODIFIED", '>', "01/02/2024")},
		{name: "depth_not_a_number", clause: clause("DEPTH", '>', "deep")},
		{name: "depth_negative", clause: clause("DEPTH", '>', "-1")},
		{name: "empty_name", clause: clause("NAME", ':', "")},
		{name: "bad_glob", clause: clause("NAME", ':', "[unclosed")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile([]grammar.FilterClause{tt.clause})
			require.Error(t, err)
			var compileErr *CompileError
			assert.ErrorAs(t, err, &compileErr)
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1B", 1},
		{"1KB", 1024},
		{"500KB", 500 * 1024},
		{"1MB", 1 << 20},
		{"2GB", 2 << 30},
		{"1TB", 1 << 40},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelect(t *testing.T) {
	metas := []scan.FileMeta{
		{Name: "a.md", Type: scan.TypeFile, Size: 2 << 20},
		{Name: "b.md", Type: scan.TypeFile, Size: 500 << 10},
	}

	pred, err := Compile([]grammar.FilterClause{
		clause("EXT", ':', "md"),
		clause("SIZE", '>', "1MB"),
	})
	require.NoError(t, err)

	selected := Select(metas, pred)
	require.Len(t, selected, 1)
	assert.Equal(t, "a.md", selected[0].Name)
}
