package crawler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// listPageHTML renders a replay list page containing ids in order
func listPageHTML(ids ...int) string {
	var b strings.Builder
	b.WriteString(`<html><body><table class="table table-striped">
		<thead><tr><th>Name</th><th>Matchup</th><th>Played</th><th>Length</th></tr></thead><tbody>`)
	for _, id := range ids {
		fmt.Fprintf(&b, `<tr>
			<td><a href="/%d/">Replay %d</a></td>
			<td>PvT</td>
			<td>Oct. %d, 2025</td>
			<td>12:%02d</td>
		</tr>`, id, id, id%28+1, id%60)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

// detailPageHTML renders a two-player replay page for id
func detailPageHTML(id int, withDate bool) string {
	played := ""
	if withDate {
		played = `<li><b>Played on:</b> Oct. 3, 2025</li>`
	}
	return fmt.Sprintf(`<html><body>
	<div id="replay-overview">
		<h3>Map: <a href="/maps/1/">Ultralove LE</a></h3>
		<h3>Time</h3>
		<ul>%s<li><b>Length:</b> 12:41</li></ul>
		<h4>herO - Winner!</h4>
		<ul><li><img src="/static/protoss.png" alt="Protoss"> Protoss</li><li>APM 320</li></ul>
		<h4>Player%d</h4>
		<ul><li><img src="/static/terran.png" alt="Terran"> Terran</li></ul>
	</div>
	<div id="player-1"><table>
		<tr><th>Supply</th><th>Time</th><th>Action</th></tr>
		<tr><td> 12 </td><td>0:00</td><td>Probe</td></tr>
		<tr><td>14</td><td>0:12</td><td> Pylon </td></tr>
		<tr><td>16</td><td>0:38</td><td>Gateway</td></tr>
	</table></div>
	<div id="player-2"><table>
		<tr><td>12</td><td>0:00</td><td>SCV</td></tr>
		<tr><td>14</td><td>0:18</td><td>Supply Depot</td></tr>
	</table></div>
	</body></html>`, played, id)
}

// fakeSite serves list and detail pages and records what it was asked for
type fakeSite struct {
	t *testing.T

	mu          sync.Mutex
	lists       map[int]map[int][]int // tag -> page -> ids
	failLists   map[string]bool       // "tag:page"
	failDetails map[int]bool
	limited     map[int]bool // detail ids answered with 429
	noDate      map[int]bool
	detailHits  map[int]int

	delay    time.Duration
	requests atomic.Int64
	inFlight atomic.Int64
	peak     atomic.Int64
}

func newFakeSite(t *testing.T) *fakeSite {
	return &fakeSite{
		t:           t,
		lists:       make(map[int]map[int][]int),
		failLists:   make(map[string]bool),
		failDetails: make(map[int]bool),
		limited:     make(map[int]bool),
		noDate:      make(map[int]bool),
		detailHits:  make(map[int]int),
	}
}

func (s *fakeSite) list(tag, page int, ids ...int) {
	if s.lists[tag] == nil {
		s.lists[tag] = make(map[int][]int)
	}
	s.lists[tag][page] = ids
}

func (s *fakeSite) hits(id int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detailHits[id]
}

func (s *fakeSite) start() *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(s.serve))
	s.t.Cleanup(server.Close)
	return server
}

func (s *fakeSite) serve(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	if r.URL.Path == "/replays/" {
		tags := r.URL.Query()["tag"]
		page, _ := strconv.Atoi(r.URL.Query().Get("p"))
		tag := 0
		if len(tags) > 0 {
			tag, _ = strconv.Atoi(tags[len(tags)-1])
		}

		s.mu.Lock()
		fail := s.failLists[fmt.Sprintf("%d:%d", tag, page)]
		ids, ok := s.lists[tag][page]
		s.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if !ok {
			w.Write([]byte(`<html><body><p>No replays found.</p></body></html>`))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(listPageHTML(ids...)))
		return
	}

	id, err := strconv.Atoi(strings.Trim(r.URL.Path, "/"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	s.mu.Lock()
	s.detailHits[id]++
	fail := s.failDetails[id]
	limited := s.limited[id]
	withDate := !s.noDate[id]
	s.mu.Unlock()

	if limited {
		w.WriteHeader(http.StatusTooManyRequests)
		return
	}
	if fail {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(detailPageHTML(id, withDate)))
}
