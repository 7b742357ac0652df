package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func pageServer(t *testing.T, page *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, *page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const acmePage = `<html><head><style>h2 { color: red }</style></head><body>
<script>var engineer = "not a posting";</script>
<h2>Senior Software Engineer</h2>
<h3>Data Analyst</h3>
<h2>About Us</h2>
</body></html>`

func TestCompanyPagePoll_ExtractsEntries(t *testing.T) {
	page := acmePage
	srv := pageServer(t, &page)

	p := NewCompanyPagePoller("Acme", srv.URL, srv.Client(), discardLogger())
	postings, marker, err := p.Poll(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marker == "" {
		t.Fatal("expected a content-hash marker")
	}
	if len(postings) != 2 {
		t.Fatalf("postings = %d, want 2 (role headings only)", len(postings))
	}
	titles := []string{postings[0].Title, postings[1].Title}
	if titles[0] != "Senior Software Engineer" || titles[1] != "Data Analyst" {
		t.Errorf("titles = %v", titles)
	}
	for _, posting := range postings {
		if posting.Author != "Acme" {
			t.Errorf("author = %q, want Acme", posting.Author)
		}
		if !strings.HasPrefix(posting.URL, srv.URL+"#") {
			t.Errorf("url = %q, want an entry anchor on the page URL", posting.URL)
		}
	}
}

func TestCompanyPagePoll_UnchangedPageShortCircuits(t *testing.T) {
	page := acmePage
	srv := pageServer(t, &page)

	p := NewCompanyPagePoller("Acme", srv.URL, srv.Client(), discardLogger())
	_, marker, err := p.Poll(context.Background(), "")
	if err != nil {
		t.Fatalf("first poll: %v", err)
	}

	postings, next, err := p.Poll(context.Background(), marker)
	if err != nil {
		t.Fatalf("second poll: %v", err)
	}
	if len(postings) != 0 {
		t.Errorf("postings = %d, want 0 for an unchanged page", len(postings))
	}
	if next != marker {
		t.Errorf("marker changed on an unchanged page: %q -> %q", marker, next)
	}
}

func TestCompanyPagePoll_OnlyNewEntriesAfterChange(t *testing.T) {
	page := acmePage
	srv := pageServer(t, &page)

	p := NewCompanyPagePoller("Acme", srv.URL, srv.Client(), discardLogger())
	_, marker, err := p.Poll(context.Background(), "")
	if err != nil {
		t.Fatalf("first poll: %v", err)
	}

	page = strings.Replace(acmePage, "</body>", "<h2>Platform Engineer</h2></body>", 1)
	postings, next, err := p.Poll(context.Background(), marker)
	if err != nil {
		t.Fatalf("second poll: %v", err)
	}
	if len(postings) != 1 || postings[0].Title != "Platform Engineer" {
		t.Fatalf("postings = %+v, want only the new entry", postings)
	}
	if next == marker {
		t.Error("marker should change with the page content")
	}
}

func TestCompanyPagePoll_RemovedEntryEmitsNothing(t *testing.T) {
	page := acmePage
	srv := pageServer(t, &page)

	p := NewCompanyPagePoller("Acme", srv.URL, srv.Client(), discardLogger())
	if _, marker, err := p.Poll(context.Background(), ""); err != nil {
		t.Fatalf("first poll: %v", err)
	} else {
		page = strings.Replace(acmePage, "<h3>Data Analyst</h3>\n", "", 1)
		postings, _, err := p.Poll(context.Background(), marker)
		if err != nil {
			t.Fatalf("second poll: %v", err)
		}
		if len(postings) != 0 {
			t.Errorf("postings = %+v, want none when an entry disappears", postings)
		}
	}
}
