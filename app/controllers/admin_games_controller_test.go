package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Space Raiders", "space-raiders"},
		{"  Tower Defense 2  ", "tower-defense-2"},
		{"Déjà Vu!", "dj-vu"},
		{"already-a-slug", "already-a-slug"},
		{"---", ""},
		{"UPPER case", "upper-case"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, normalizeSlug(c.in), "input %q", c.in)
	}
}
