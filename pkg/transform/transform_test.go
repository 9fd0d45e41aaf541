package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyles(t *testing.T) {
	tests := []struct {
		name  string
		style string
		in    string
		want  string
	}{
		{name: "snake_from_camel", style: "snake", in: "featureWishList", want: "feature_wish_list"},
		{name: "snake_from_pascal", style: "snake", in: "HelloWorld", want: "hello_world"},
		{name: "snake_is_noop_on_snake", style: "snake", in: "already_snake", want: "already_snake"},
		{name: "snake_from_kebab", style: "snake", in: "my-file", want: "my_file"},
		{name: "snake_splits_acronym_runs", style: "snake", in: "XMLDocument", want: "xml_document"},
		{name: "kebab_from_spaces", style: "kebab", in: "Document Template", want: "document-template"},
		{name: "kebab_from_pascal", style: "kebab", in: "HelloWorld", want: "hello-world"},
		{name: "kebab_is_noop_on_kebab", style: "kebab", in: "already-kebab", want: "already-kebab"},
		{name: "title_from_snake", style: "title", in: "hello_world", want: "Hello World"},
		{name: "title_from_kebab", style: "title", in: "my-file", want: "My File"},
		{name: "camel_from_snake", style: "camel", in: "feature_wish_list", want: "featureWishList"},
		{name: "camel_single_word", style: "camel", in: "Word", want: "word"},
		{name: "pascal_from_kebab", style: "pascal", in: "my-file", want: "MyFile"},
		{name: "lower_folds_without_tokenizing", style: "lower", in: "XMLDocument", want: "xmldocument"},
		{name: "lower_is_idempotent", style: "lower", in: "xmldocument", want: "xmldocument"},
		{name: "upper_folds_without_tokenizing", style: "upper", in: "my_file", want: "MY_FILE"},
		{name: "empty_name_unchanged", style: "snake", in: "", want: ""},
	}

	reg := NewRegistry(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, ok := reg.Get(tt.style)
			require.True(t, ok)
			assert.Equal(t, tt.want, tr.Apply(tt.in))
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "strips_specials_and_collapses_spaces", in: "  My File (1) !!  ", want: "My File 1"},
		{name: "trims_leading_dots", in: "..leading-dots", want: "leading-dots"},
		{name: "trims_trailing_dots", in: "trailing-dots..", want: "trailing-dots"},
		{name: "keeps_allowed_punctuation", in: "a-b.c_d", want: "a-b.c_d"},
	}

	reg := NewRegistry(nil)
	cleanTr, ok := reg.Get("clean")
	require.True(t, ok)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanTr.Apply(tt.in))
		})
	}
}

func TestChange(t *testing.T) {
	tests := []struct {
		name        string
		old         string
		new         string
		in          string
		want        string
		wantRemoval bool
	}{
		{name: "replaces_all_occurrences", old: "o", new: "0", in: "foo_bool", want: "f00_b00l"},
		{name: "empty_replacement_is_removal", old: "IMG_", new: "", in: "IMG_1234", want: "1234", wantRemoval: true},
		{name: "removal_hits_every_occurrence", old: "x", new: "", in: "xaxbx", want: "ab", wantRemoval: true},
		{name: "no_match_is_identity", old: "zzz", new: "y", in: "abc", want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewChange(tt.old, tt.new)
			assert.Equal(t, tt.want, tr.Apply(tt.in))
			assert.Equal(t, tt.wantRemoval, tr.Removal())
		})
	}
}

func TestRegex(t *testing.T) {
	t.Run("capture_groups_in_replacement", func(t *testing.T) {
		tr, err := NewRegex(`(\d{4})-(\d{2})`, "$2_$1")
		require.NoError(t, err)
		assert.Equal(t, "03_2024_report", tr.Apply("2024-03_report"))
	})

	t.Run("bad_pattern_fails_before_any_file", func(t *testing.T) {
		_, err := NewRegex(`(unclosed`, "x")
		require.Error(t, err)
	})
}

func TestApplyToFileName(t *testing.T) {
	reg := NewRegistry(nil)
	snake, ok := reg.Get("snake")
	require.True(t, ok)
	upper, ok := reg.Get("upper")
	require.True(t, ok)

	tests := []struct {
		name string
		tr   Transform
		in   string
		want string
	}{
		{name: "extension_casing_survives_snake", tr: snake, in: "MyNotes.MD", want: "my_notes.MD"},
		{name: "extension_casing_survives_upper", tr: upper, in: "notes.md", want: "NOTES.md"},
		{name: "split_example_from_docs", tr: snake, in: "featureWishList.md", want: "feature_wish_list.md"},
		{name: "no_extension", tr: snake, in: "MyNotes", want: "my_notes"},
		{name: "dotfile_has_no_extension", tr: upper, in: ".bashrc", want: ".BASHRC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyToFileName(tt.in, tt.tr))
		})
	}
}

func TestSplitExt(t *testing.T) {
	base, ext := SplitExt("archive.tar.gz")
	assert.Equal(t, "archive.tar", base)
	assert.Equal(t, ".gz", ext)

	base, ext = SplitExt(".bashrc")
	assert.Equal(t, ".bashrc", base)
	assert.Equal(t, "", ext)
}
