package asset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vasiliy-maslov/marketplace-service/internal/asset"
)

func TestResolver_URL(t *testing.T) {
	r := asset.NewResolver("http://10.0.2.2:5000/")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"relative upload", "/uploads/a.jpg", "http://10.0.2.2:5000/uploads/a.jpg"},
		{"absolute url", "https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"empty", "", ""},
		{"whitespace", "  /uploads/b.png ", "http://10.0.2.2:5000/uploads/b.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.URL(tt.in))
		})
	}
}

func TestResolver_ImageLists(t *testing.T) {
	r := asset.NewResolver("http://host")

	assert.Equal(t, []string{"http://host/uploads/1.jpg", "https://x/2.jpg"}, r.URLs("/uploads/1.jpg, https://x/2.jpg,"))
	assert.Equal(t, "http://host/uploads/1.jpg", r.First(" /uploads/1.jpg ,/uploads/2.jpg"))
	assert.Equal(t, "", r.First(""))
	assert.Empty(t, r.URLs(""))
}

func TestJoinImages(t *testing.T) {
	assert.Equal(t, "/uploads/1.jpg,/uploads/2.jpg", asset.JoinImages([]string{" /uploads/1.jpg", "", "/uploads/2.jpg "}))
	assert.Equal(t, "", asset.JoinImages(nil))
}
