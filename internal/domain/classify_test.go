package domain

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		headline string
		url      string
		want     Category
	}{
		{
			name:     "interview phrase in headline",
			headline: "Logan Federico Speaks: Exclusive Interview",
			url:      "https://news.example.com/a",
			want:     CategoryInterview,
		},
		{
			name:     "video host in url",
			headline: "Watch: Logan Federico Tribute Video",
			url:      "https://youtu.be/xyz",
			want:     CategoryVideo,
		},
		{
			name:     "watch keyword beats social host",
			headline: "Watch the vigil live",
			url:      "https://facebook.com/events/123",
			want:     CategoryVideo,
		},
		{
			name:     "social platform url",
			headline: "Community gathers to remember",
			url:      "https://www.facebook.com/justiceforlogan/posts/1",
			want:     CategorySocial,
		},
		{
			name:     "press release phrase",
			headline: "Press Release: Family statement on sentencing",
			url:      "https://example.org/releases/1",
			want:     CategoryPress,
		},
		{
			name:     "testimony phrase",
			headline: "Father's testimony moves lawmakers",
			url:      "https://statehouse.example.gov/hearings",
			want:     CategoryInterview,
		},
		{
			name:     "plain article defaults to news",
			headline: "Columbia shooting case heads to trial",
			url:      "https://news.example.com/trial",
			want:     CategoryNews,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tc.headline, tc.url)
			if got != tc.want {
				t.Fatalf("Classify(%q, %q) = %q, want %q", tc.headline, tc.url, got, tc.want)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	t.Parallel()

	headline := "Exclusive: new details emerge"
	url := "https://news.example.com/details"

	first := Classify(headline, url)
	for i := 0; i < 10; i++ {
		if got := Classify(headline, url); got != first {
			t.Fatalf("classification changed between calls: %q vs %q", first, got)
		}
	}
}

func TestClassifyCategoryClosure(t *testing.T) {
	t.Parallel()

	valid := map[Category]bool{
		CategoryNews: true, CategoryVideo: true, CategorySocial: true,
		CategoryInterview: true, CategoryPress: true,
	}

	inputs := []struct{ headline, url string }{
		{"", ""},
		{"random headline", "not-a-url"},
		{"Watch video exclusive interview press release", "https://youtube.com/x"},
		{"statement", "https://twitter.com/a/status/1"},
	}

	for _, in := range inputs {
		if got := Classify(in.headline, in.url); !valid[got] {
			t.Fatalf("Classify(%q, %q) produced unknown category %q", in.headline, in.url, got)
		}
	}
}

func TestBreakdownAdd(t *testing.T) {
	t.Parallel()

	var b Breakdown
	for _, c := range []Category{CategoryNews, CategoryNews, CategoryVideo, CategoryPress} {
		b.Add(c)
	}

	if b.News != 2 || b.Video != 1 || b.Press != 1 || b.Interview != 0 || b.Social != 0 {
		t.Fatalf("unexpected breakdown: %+v", b)
	}
}
