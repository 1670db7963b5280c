package canvas

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/luciancaetano/canvasnet"
	"github.com/luciancaetano/canvasnet/internal/transport/transporttest"
)

func newTestCanvas(t *testing.T, id string) *Canvas {
	t.Helper()
	c := New(id, 300, 150, "no canvas")
	t.Cleanup(c.Shutdown)
	return c
}

// settle waits until queued events ran and queued commands were sent.
func settle(t *testing.T, c *Canvas) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Sync(ctx); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
}

// answerQueries makes r reply to every correlated query line with reply(verb).
func answerQueries(c *Canvas, r *transporttest.Recorder, reply func(verb string) string) {
	r.OnSend = func(text string) {
		fields := strings.Fields(text)
		if len(fields) < 2 || !strings.HasPrefix(fields[1], "@") {
			return
		}
		c.Dispatch("response " + fields[1] + " " + reply(fields[0]))
	}
}

func equalLines(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// TestNewCanvas tests identity fields
func TestNewCanvas(t *testing.T) {
	t.Parallel()

	c := New("board", 640, 480, "fallback", WithAttributes(map[string]string{"class": "main"}))
	defer c.Shutdown()

	if c.ID() != "board" || c.Width() != 640 || c.Height() != 480 || c.Alt() != "fallback" {
		t.Errorf("identity = %s %d %d %s", c.ID(), c.Width(), c.Height(), c.Alt())
	}
	if c.Attributes()["class"] != "main" {
		t.Errorf("Attributes() = %v", c.Attributes())
	}
	if _, ok := c.LastResponse(); ok {
		t.Error("LastResponse() reported a value before any response")
	}
}

// TestNewCanvasGeneratesID tests that an empty id is replaced
func TestNewCanvasGeneratesID(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "")
	if len(c.ID()) != 36 {
		t.Errorf("ID() = %q, want a UUID", c.ID())
	}
}

// TestOpenSendsRegistration tests the registration line goes only to the new transport
func TestOpenSendsRegistration(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "42")
	a, b := transporttest.New("a"), transporttest.New("b")

	c.Open(a)
	settle(t, c)
	c.Open(b)
	settle(t, c)

	if got := b.Lines(); !equalLines(got, []string{"register #42"}) {
		t.Errorf("b got %v, want [register #42]", got)
	}
	if got := a.Lines(); !equalLines(got, []string{"register #42"}) {
		t.Errorf("a got %v, want only its own registration", got)
	}
	if c.Transports() != 2 {
		t.Errorf("Transports() = %d, want 2", c.Transports())
	}
}

// TestDrawBroadcast tests fan-out to current transports only
func TestDrawBroadcast(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")
	a, b, gone := transporttest.New("a"), transporttest.New("b"), transporttest.New("c")
	c.Open(a)
	c.Open(b)
	c.Open(gone)
	c.Close(gone)
	settle(t, c)

	if err := c.FillRect(0, 0, 10, 10); err != nil {
		t.Fatalf("FillRect() error = %v", err)
	}
	settle(t, c)

	want := []string{"register #1", "fillRect 0 0 10 10"}
	for _, r := range []*transporttest.Recorder{a, b} {
		if got := r.Lines(); !equalLines(got, want) {
			t.Errorf("%s got %v, want %v", r.ID(), got, want)
		}
	}
	if got := gone.Lines(); !equalLines(got, []string{"register #1"}) {
		t.Errorf("closed transport got %v", got)
	}
}

// TestDrawOrder tests that commands arrive in issue order
func TestDrawOrder(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")
	a := transporttest.New("a")
	c.Open(a)
	settle(t, c)

	c.BeginPath()
	c.MoveTo(0, 0)
	c.LineTo(10.5, 20)
	c.Arc(5, 5, 2, 0, 3.14, true)
	c.Stroke()
	c.Save()
	c.Restore()
	settle(t, c)

	want := []string{
		"register #1",
		"beginPath",
		"moveTo 0 0",
		"lineTo 10.5 20",
		"arc 5 5 2 0 3.14 true",
		"stroke",
		"save",
		"restore",
	}
	if got := a.Lines(); !equalLines(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestDrawUnsupported tests that unknown operations fail before any send
func TestDrawUnsupported(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")
	a := transporttest.New("a")
	c.Open(a)
	settle(t, c)

	err := c.Draw("fill_unicorn", 1)
	if !errors.Is(err, canvasnet.ErrUnsupportedOperation) {
		t.Fatalf("Draw() error = %v, want ErrUnsupportedOperation", err)
	}
	if !strings.Contains(err.Error(), "fill_unicorn") {
		t.Errorf("error %q does not name the operation", err)
	}

	if err := c.Draw("fill_rect", 1, 2); !errors.Is(err, canvasnet.ErrArgumentCount) {
		t.Errorf("Draw() error = %v, want ErrArgumentCount", err)
	}

	settle(t, c)
	if got := a.Lines(); len(got) != 1 {
		t.Errorf("got %v, want only the registration", got)
	}
}

// TestDispatchResponse tests flattening, storage and the response subscription
func TestDispatchResponse(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")

	var got []string
	c.OnResponse(func(v string) { got = append(got, v) })

	if err := c.Dispatch("response a b c"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	settle(t, c)

	if v, ok := c.LastResponse(); !ok || v != "a b c" {
		t.Errorf("LastResponse() = %q, %v, want %q", v, ok, "a b c")
	}
	if len(got) != 1 || got[0] != "a b c" {
		t.Errorf("response handler got %v, want [a b c]", got)
	}
}

// TestDispatchMouseDown tests mapping parsing and malformed input
func TestDispatchMouseDown(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")

	var calls [][2]string
	c.OnMouseDown(func(x, y string) { calls = append(calls, [2]string{x, y}) })

	if err := c.Dispatch("mousedown x 10 y 20"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	settle(t, c)

	if len(calls) != 1 || calls[0] != [2]string{"10", "20"} {
		t.Fatalf("mousedown handler got %v, want [[10 20]]", calls)
	}

	c.Dispatch("response before")
	settle(t, c)

	for _, raw := range []string{"mousedown x 10 y", "mousedown x 10", "mousedown y 1 z 2"} {
		err := c.Dispatch(raw)
		if !errors.Is(err, canvasnet.ErrMalformedMessage) {
			t.Errorf("Dispatch(%q) error = %v, want ErrMalformedMessage", raw, err)
		}
	}
	settle(t, c)

	if len(calls) != 1 {
		t.Errorf("malformed messages fired the handler: %v", calls)
	}
	if v, _ := c.LastResponse(); v != "before" {
		t.Errorf("LastResponse() = %q, want it unchanged", v)
	}
}

// TestSubscriptionReplacement tests single-slot handlers
func TestSubscriptionReplacement(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")

	var first, second []string
	c.OnKeyDown(func(code string) { first = append(first, code) })
	c.OnKeyDown(func(code string) { second = append(second, code) })

	c.Dispatch("keydown key_code 65")
	c.Dispatch("keydown key_code 66")
	settle(t, c)

	if len(first) != 0 {
		t.Errorf("replaced handler fired: %v", first)
	}
	if !equalLines(second, []string{"65", "66"}) {
		t.Errorf("second handler got %v, want [65 66]", second)
	}
}

// TestDispatchUnknownCommand tests that unknown commands are ignored
func TestDispatchUnknownCommand(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")

	fired := false
	c.OnMouseDown(func(x, y string) { fired = true })
	c.OnKeyDown(func(string) { fired = true })
	c.OnResponse(func(string) { fired = true })

	if err := c.Dispatch("foobar"); err != nil {
		t.Errorf("Dispatch(foobar) error = %v", err)
	}
	if err := c.Dispatch("mouseup x 1 y 2"); err != nil {
		t.Errorf("Dispatch(mouseup) error = %v", err)
	}
	settle(t, c)

	if fired {
		t.Error("a handler fired for an unknown command")
	}
}

// TestDispatchWithoutHandlers tests that events without handlers are no-ops
func TestDispatchWithoutHandlers(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")
	for _, raw := range []string{"mousedown x 1 y 2", "keydown key_code 13", "response ok"} {
		if err := c.Dispatch(raw); err != nil {
			t.Errorf("Dispatch(%q) error = %v", raw, err)
		}
	}
	settle(t, c)
}

// TestMessageSurvivesMalformed tests that bad lines are dropped and later ones handled
func TestMessageSurvivesMalformed(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")
	a := transporttest.New("a")

	var keys []string
	c.OnKeyDown(func(code string) { keys = append(keys, code) })

	c.Message(a, "keydown key_code")
	c.Message(a, "")
	c.Message(a, "keydown key_code 32")
	settle(t, c)

	if !equalLines(keys, []string{"32"}) {
		t.Errorf("keydown handler got %v, want [32]", keys)
	}
}

// TestCommandFromHandler tests that handlers may issue commands
func TestCommandFromHandler(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")
	a := transporttest.New("a")
	c.Open(a)
	c.OnMouseDown(func(x, y string) {
		c.FillRect(x, y, 10, 10)
	})

	c.Dispatch("mousedown x 5 y 7")
	settle(t, c)

	want := []string{"register #1", "fillRect 5 7 10 10"}
	if got := a.Lines(); !equalLines(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestQueryCorrelation tests that a query returns the reply carrying its id
func TestQueryCorrelation(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")
	a := transporttest.New("a")
	answerQueries(c, a, func(verb string) string {
		if verb == "lineWidth" {
			return "5"
		}
		return "unexpected"
	})
	c.Open(a)
	settle(t, c)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := c.LineWidth(ctx, nil)
	if err != nil {
		t.Fatalf("LineWidth() error = %v", err)
	}
	if got != "5" {
		t.Errorf("LineWidth() = %q, want 5", got)
	}

	settle(t, c)
	if v, _ := c.LastResponse(); v != "5" {
		t.Errorf("LastResponse() = %q, want 5", v)
	}

	lines := a.Lines()
	if len(lines) != 2 || lines[1] != "lineWidth @1" {
		t.Errorf("got %v, want registration then lineWidth @1", lines)
	}
}

// TestConcurrentQueries tests that interleaved replies reach their own queries
func TestConcurrentQueries(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")
	a := transporttest.New("a")
	c.Open(a)
	settle(t, c)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	results := make([]string, 2)
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0], errs[0] = c.Font(ctx, nil)
	}()
	go func() {
		defer wg.Done()
		results[1], errs[1] = c.TextAlign(ctx, nil)
	}()

	// Wait until both queries are on the wire, then answer them in reverse order.
	var sent []string
	for len(sent) < 2 {
		if ctx.Err() != nil {
			t.Fatal("queries were never sent")
		}
		time.Sleep(5 * time.Millisecond)
		settle(t, c)
		sent = a.Lines()[1:]
	}

	answers := map[string]string{"font": "10px serif", "textAlign": "center"}
	for i := len(sent) - 1; i >= 0; i-- {
		fields := strings.Fields(sent[i])
		c.Dispatch("response " + fields[1] + " " + answers[fields[0]])
	}
	wg.Wait()

	if errs[0] != nil || results[0] != "10px serif" {
		t.Errorf("Font() = %q, %v, want 10px serif", results[0], errs[0])
	}
	if errs[1] != nil || results[1] != "center" {
		t.Errorf("TextAlign() = %q, %v, want center", results[1], errs[1])
	}
}

// TestLegacyResponseResolvesOldest tests replies without an id
func TestLegacyResponseResolvesOldest(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")
	a := transporttest.New("a")
	a.OnSend = func(text string) {
		if strings.HasPrefix(text, "globalAlpha") {
			c.Dispatch("response 0.5")
		}
	}
	c.Open(a)
	settle(t, c)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := c.GlobalAlpha(ctx, nil)
	if err != nil || got != "0.5" {
		t.Errorf("GlobalAlpha() = %q, %v, want 0.5", got, err)
	}
}

// TestLegacyResponseSkipsUnawaitedQuery tests that a reply without an id to a
// query sent through Draw is not handed to a later Query
func TestLegacyResponseSkipsUnawaitedQuery(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")
	a := transporttest.New("a")
	c.Open(a)
	settle(t, c)

	if err := c.SetFillStyle("red"); err != nil {
		t.Fatalf("SetFillStyle() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	type result struct {
		value string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := c.LineWidth(ctx, nil)
		done <- result{v, err}
	}()

	for c.pending.Pending() < 2 {
		time.Sleep(time.Millisecond)
	}

	c.Dispatch("response red")
	c.Dispatch("response 3")

	r := <-done
	if r.err != nil || r.value != "3" {
		t.Errorf("LineWidth() = %q, %v, want 3", r.value, r.err)
	}
	if c.pending.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.pending.Pending())
	}
}

// TestQueryTimeout tests that an unanswered query ends with its context
func TestQueryTimeout(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Font(ctx, "12px sans-serif")
	if !errors.Is(err, canvasnet.ErrQueryCancelled) {
		t.Errorf("Font() error = %v, want ErrQueryCancelled", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Font() error = %v, want it to wrap DeadlineExceeded", err)
	}

	// A late reply for the abandoned query must not be handed to the next one.
	c.Dispatch("response @1 late")
	if c.pending.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.pending.Pending())
	}
}

// TestQueryShutdown tests that shutting down releases waiting queries
func TestQueryShutdown(t *testing.T) {
	t.Parallel()

	c := New("1", 10, 10, "")

	errCh := make(chan error, 1)
	go func() {
		_, err := c.ToDataURL(context.Background())
		errCh <- err
	}()

	for c.pending.Pending() == 0 {
		time.Sleep(time.Millisecond)
	}
	c.Shutdown()

	select {
	case err := <-errCh:
		if !errors.Is(err, canvasnet.ErrCanvasClosed) {
			t.Errorf("ToDataURL() error = %v, want ErrCanvasClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("query still blocked after Shutdown")
	}

	if err := c.Save(); !errors.Is(err, canvasnet.ErrCanvasClosed) {
		t.Errorf("Save() after Shutdown error = %v, want ErrCanvasClosed", err)
	}
}

// TestQueryAfterCancelAll tests that a query begun during shutdown fails at once
func TestQueryAfterCancelAll(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")
	c.pending.CancelAll()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	_, err := c.LineWidth(ctx, nil)
	if !errors.Is(err, canvasnet.ErrCanvasClosed) {
		t.Errorf("LineWidth() error = %v, want ErrCanvasClosed", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("LineWidth() returned after %v, want immediately", elapsed)
	}
}

// TestNilStyleOmitted tests that a nil style sends the bare getter
func TestNilStyleOmitted(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")
	a := transporttest.New("a")
	c.Open(a)
	settle(t, c)

	if err := c.SetFillStyle(nil); err != nil {
		t.Fatalf("SetFillStyle(nil) error = %v", err)
	}
	if err := c.Arc(0, 0, nil, 0, 1); !errors.Is(err, canvasnet.ErrArgumentCount) {
		t.Errorf("Arc() with a nil radius error = %v, want ErrArgumentCount", err)
	}
	settle(t, c)

	want := []string{"register #1", "fillStyle @1"}
	if got := a.Lines(); !equalLines(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

// TestQueryRejectsDrawOperation tests that draw operations cannot be awaited
func TestQueryRejectsDrawOperation(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")

	if _, err := c.Query(context.Background(), "fill_rect", 0, 0, 1, 1); !errors.Is(err, canvasnet.ErrNotQuery) {
		t.Errorf("Query() error = %v, want ErrNotQuery", err)
	}
	if _, err := c.Query(context.Background(), "nope"); !errors.Is(err, canvasnet.ErrUnsupportedOperation) {
		t.Errorf("Query() error = %v, want ErrUnsupportedOperation", err)
	}
}

// TestStylesAndHandles tests style encoding and handle creation
func TestStylesAndHandles(t *testing.T) {
	t.Parallel()

	c := newTestCanvas(t, "1")
	a := transporttest.New("a")
	c.Open(a)
	settle(t, c)

	if err := c.SetFillStyle("red"); err != nil {
		t.Fatalf("SetFillStyle() error = %v", err)
	}

	g, err := c.CreateLinearGradient(0, 0, 100, 0, "g1")
	if err != nil {
		t.Fatalf("CreateLinearGradient() error = %v", err)
	}
	if g.ID() != "g1" {
		t.Errorf("gradient ID() = %q, want g1", g.ID())
	}
	g.AddColorStop(0.5, "blue")
	c.SetStrokeStyle(g)

	rg, _ := c.CreateRadialGradient(1, 2, 3, 4, 5, 6, "g2")
	c.SetFillStyle(rg)

	p, err := c.CreatePattern(Image("tile"), "repeat", "p1")
	if err != nil {
		t.Fatalf("CreatePattern() error = %v", err)
	}
	c.SetFillStyle(p)
	c.DrawImage(Image("logo"), 10, 20)

	data, err := c.GetImageData("d1", 0, 0, 5, 5)
	if err != nil {
		t.Fatalf("GetImageData() error = %v", err)
	}
	data.Put(1, 1)
	c.CreateImageData("d2", 10, 10)
	settle(t, c)

	want := []string{
		"register #1",
		"fillStyle @1 red",
		"createLinearGradient 0 0 100 0 g1",
		"addColorStop g1 0.5 blue",
		"strokeStyleObject @2 g1",
		"createRadialGradient 1 2 3 4 5 6 g2",
		"fillStyleObject @3 g2",
		"createPattern tile repeat p1",
		"fillStyleObject @4 p1",
		"drawImage logo 10 20",
		"getImageData 0 0 5 5 d1",
		"putImageData d1 1 1",
	}
	if got := a.Lines(); !equalLines(got, want) {
		t.Errorf("got\n%v\nwant\n%v", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

// TestHTML tests markup rendering
func TestHTML(t *testing.T) {
	t.Parallel()

	c := New("board", 640, 480, "Your browser <b>cannot</b> draw",
		WithAttributes(map[string]string{"style": "border:1px", "class": "main"}))
	defer c.Shutdown()

	want := `<canvas id="board" width="640" height="480" class="main" style="border:1px">` +
		`Your browser &lt;b&gt;cannot&lt;/b&gt; draw</canvas>`
	if got := c.HTML(); got != want {
		t.Errorf("HTML() =\n%s\nwant\n%s", got, want)
	}
}
