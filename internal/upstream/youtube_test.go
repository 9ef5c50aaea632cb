package upstream

import "testing"

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", want: "dQw4w9WgXcQ"},
		{url: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{url: "https://youtu.be/dQw4w9WgXcQ?si=abc", want: "dQw4w9WgXcQ"},
		{url: "https://m.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{url: "youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{url: "https://example.com/watch?v=x", wantErr: true},
		{url: "https://notyoutube.com/watch?v=x", wantErr: true},
		{url: "https://youtube.com.evil.example/watch?v=x", wantErr: true},
		{url: "https://www.youtube.com/watch", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ExtractVideoID(tc.url)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error, got %q", tc.url, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", tc.url, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.url, got, tc.want)
		}
	}
}
