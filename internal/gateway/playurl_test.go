package gateway

import (
	"reflect"
	"testing"
)

func TestParsePlayURL(t *testing.T) {
	tests := []struct {
		name    string
		playURL string
		want    []Episode
	}{
		{
			name:    "two episodes",
			playURL: "A$u1#B$u2",
			want:    []Episode{{Name: "A", URL: "u1"}, {Name: "B", URL: "u2"}},
		},
		{
			name:    "empty string",
			playURL: "",
			want:    []Episode{},
		},
		{
			name:    "segment without dollar",
			playURL: "NoDollar",
			want:    []Episode{{Name: "NoDollar"}},
		},
		{
			name:    "single episode with m3u8",
			playURL: "第01集$https://cdn.example.com/ep01/index.m3u8",
			want:    []Episode{{Name: "第01集", URL: "https://cdn.example.com/ep01/index.m3u8"}},
		},
		{
			name:    "mixed segments",
			playURL: "A$u1#plain#B$u2",
			want:    []Episode{{Name: "A", URL: "u1"}, {Name: "plain"}, {Name: "B", URL: "u2"}},
		},
		{
			name:    "dollar inside url kept",
			playURL: "A$http://h/x$y",
			want:    []Episode{{Name: "A", URL: "http://h/x$y"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePlayURL(tt.playURL)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePlayURL(%q) = %+v, want %+v", tt.playURL, got, tt.want)
			}
		})
	}
}
