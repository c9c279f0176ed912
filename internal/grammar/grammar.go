package grammar

import (
	"fmt"
	"strconv"
	"strings"
)

// Match parses source starting at rule. An empty rule means RuleFile.
// Single-value rules (date, time, timeRange, duration) must cover the whole
// first line; any later line has to be blank.
func Match(source string, rule Rule) (*Node, error) {
	m := &matcher{lines: splitLines(source)}

	switch rule {
	case "", RuleFile:
		return m.file(source)
	case RuleRecord:
		return m.whole(m.record)
	case RuleEntry:
		return m.whole(m.entry)
	}

	single := map[Rule]func(*cursor) (*Node, error){
		RuleDate:      (*cursor).date,
		RuleTimeRange: (*cursor).timeRange,
		RuleTime:      (*cursor).time,
		RuleDuration:  (*cursor).duration,
	}
	fn, ok := single[rule]
	if !ok {
		return nil, fmt.Errorf("unknown grammar rule %q", rule)
	}
	c := &cursor{line: m.lines[0]}
	n, err := fn(c)
	if err != nil {
		return nil, err
	}
	if !c.eof() {
		return nil, c.fail("end of input")
	}
	m.row = 1
	if err := m.expectEnd(); err != nil {
		return nil, err
	}
	return n, nil
}

type srcLine struct {
	text   string
	num    int
	offset int
}

func splitLines(source string) []srcLine {
	var lines []srcLine
	offset := 0
	for i, text := range strings.Split(source, "\n") {
		lines = append(lines, srcLine{text: strings.TrimSuffix(text, "\r"), num: i + 1, offset: offset})
		offset += len(text) + 1
	}
	return lines
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

func isIndented(s string) bool { return s != "" && (s[0] == ' ' || s[0] == '\t') }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// matcher walks the source line by line for the multi-line rules.
type matcher struct {
	lines []srcLine
	row   int
}

func (m *matcher) skipBlank() {
	for m.row < len(m.lines) && isBlank(m.lines[m.row].text) {
		m.row++
	}
}

func (m *matcher) expectEnd() error {
	m.skipBlank()
	if m.row < len(m.lines) {
		return (&cursor{line: m.lines[m.row]}).fail("end of input")
	}
	return nil
}

func (m *matcher) whole(fn func() (*Node, error)) (*Node, error) {
	m.skipBlank()
	if m.row >= len(m.lines) {
		last := m.lines[len(m.lines)-1]
		return nil, (&cursor{line: last, i: len(last.text)}).fail("input")
	}
	n, err := fn()
	if err != nil {
		return nil, err
	}
	if err := m.expectEnd(); err != nil {
		return nil, err
	}
	return n, nil
}

func (m *matcher) file(source string) (*Node, error) {
	file := &Node{Kind: KindFile, Text: source, Pos: Position{Line: 1, Column: 1}}
	m.skipBlank()
	for m.row < len(m.lines) {
		rec, err := m.record()
		if err != nil {
			return nil, err
		}
		file.Children = append(file.Children, rec)
		m.skipBlank()
	}
	return file, nil
}

// record matches a headline, optional unindented summary lines and indented
// entries, up to the next blank line.
func (m *matcher) record() (*Node, error) {
	first := m.lines[m.row]
	c := &cursor{line: first}
	head, err := c.recordHead()
	if err != nil {
		return nil, err
	}
	m.row++
	rec := &Node{Kind: KindRecord, Text: first.text, Pos: c.posAt(0), Children: []*Node{head}}

	var summary *Node
	for m.row < len(m.lines) {
		ln := m.lines[m.row]
		if isBlank(ln.text) || isIndented(ln.text) {
			break
		}
		line := (&cursor{line: ln}).rest(KindSummaryLine)
		if summary == nil {
			summary = &Node{Kind: KindRecordSummary, Text: line.Text, Pos: line.Pos}
		}
		summary.Children = append(summary.Children, line)
		m.row++
	}
	if summary != nil {
		rec.Children = append(rec.Children, summary)
	}

	for m.row < len(m.lines) && !isBlank(m.lines[m.row].text) {
		if !isIndented(m.lines[m.row].text) {
			return nil, (&cursor{line: m.lines[m.row]}).fail("indented entry or blank line")
		}
		entry, err := m.entry()
		if err != nil {
			return nil, err
		}
		rec.Children = append(rec.Children, entry)
	}
	return rec, nil
}

// entry matches an indented value with an optional summary. Following
// indented lines continue the summary when they are indented deeper than the
// entry or do not start with an entry value; the builder checks their depth.
func (m *matcher) entry() (*Node, error) {
	ln := m.lines[m.row]
	c := &cursor{line: ln}
	indent := c.whitespace(KindIndent)
	if indent.Text == "" {
		return nil, c.fail("indentation")
	}
	value, err := c.entryValue()
	if err != nil {
		return nil, err
	}
	entry := &Node{Kind: KindEntry, Text: ln.text, Pos: c.posAt(0), Children: []*Node{indent, value}}
	m.row++

	gap := c.whitespace(KindSpacing)
	if c.eof() {
		return entry, nil
	}
	if gap.Text == "" {
		return nil, c.fail("whitespace or end of line")
	}
	first := c.rest(KindSummaryLine)
	summary := &Node{Kind: KindEntrySummary, Text: first.Text, Pos: first.Pos, Children: []*Node{first}}

	for m.row < len(m.lines) {
		next := m.lines[m.row]
		if isBlank(next.text) || !isIndented(next.text) {
			break
		}
		if len(leadingWhitespace(next.text)) <= len(indent.Text) && startsEntry(next) {
			break
		}
		nc := &cursor{line: next}
		ind := nc.whitespace(KindIndent)
		text := nc.rest(KindSummaryLine)
		summary.Children = append(summary.Children, &Node{
			Kind: KindContinuation, Text: next.text, Pos: nc.posAt(0), Children: []*Node{ind, text},
		})
		m.row++
	}
	entry.Children = append(entry.Children, summary)
	return entry, nil
}

// startsEntry reports whether ln holds an entry value followed by whitespace
// or the end of the line.
func startsEntry(ln srcLine) bool {
	c := &cursor{line: ln}
	c.whitespace(KindIndent)
	if _, err := c.entryValue(); err != nil {
		return false
	}
	return c.eof() || c.peek() == ' ' || c.peek() == '\t'
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

// cursor scans a single line.
type cursor struct {
	line srcLine
	i    int
}

func (c *cursor) eof() bool { return c.i >= len(c.line.text) }

func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.line.text[c.i]
}

func (c *cursor) posAt(i int) Position {
	return Position{Offset: c.line.offset + i, Line: c.line.num, Column: i + 1}
}

func (c *cursor) node(kind Kind, start int, children ...*Node) *Node {
	return &Node{Kind: kind, Text: c.line.text[start:c.i], Pos: c.posAt(start), Children: children}
}

func (c *cursor) fail(expected string) *MatchError {
	found := "end of line"
	if !c.eof() {
		rest := c.line.text[c.i:]
		if len(rest) > 12 {
			rest = rest[:12] + "..."
		}
		found = strconv.Quote(rest)
	}
	return &MatchError{Pos: c.posAt(c.i), Expected: expected, Found: found}
}

func (c *cursor) failAt(start int, expected string) *MatchError {
	c.i = start
	return c.fail(expected)
}

func (c *cursor) whitespace(kind Kind) *Node {
	start := c.i
	for c.peek() == ' ' || c.peek() == '\t' {
		c.i++
	}
	return c.node(kind, start)
}

func (c *cursor) rest(kind Kind) *Node {
	start := c.i
	c.i = len(c.line.text)
	n := c.node(kind, start)
	n.Text = strings.TrimRight(n.Text, " \t")
	return n
}

func (c *cursor) digits(limit int) *Node {
	start := c.i
	for isDigit(c.peek()) && (limit == 0 || c.i-start < limit) {
		c.i++
	}
	if c.i == start {
		return nil
	}
	return c.node(KindDigits, start)
}

func (c *cursor) exactDigits(n int, expected string) (*Node, error) {
	start := c.i
	d := c.digits(n)
	if d == nil || len(d.Text) != n {
		return nil, c.failAt(start, expected)
	}
	return d, nil
}

func (c *cursor) recordHead() (*Node, error) {
	start := c.i
	date, err := c.date()
	if err != nil {
		return nil, err
	}
	head := c.node(KindRecordHead, start, date)

	gap := c.whitespace(KindSpacing)
	if c.peek() == '(' {
		if gap.Text == "" {
			return nil, c.fail("whitespace before should-total")
		}
		total, err := c.shouldTotal()
		if err != nil {
			return nil, err
		}
		head.Children = append(head.Children, total)
		head.Text = c.line.text[start:c.i]
		c.whitespace(KindSpacing)
	}
	if !c.eof() {
		return nil, c.fail("should-total or end of line")
	}
	return head, nil
}

func (c *cursor) date() (*Node, error) {
	start := c.i
	year, err := c.exactDigits(4, "four-digit year")
	if err != nil {
		return nil, err
	}
	sep1, err := c.divider()
	if err != nil {
		return nil, err
	}
	month, err := c.exactDigits(2, "two-digit month")
	if err != nil {
		return nil, err
	}
	sep2, err := c.divider()
	if err != nil {
		return nil, err
	}
	day, err := c.exactDigits(2, "two-digit day")
	if err != nil {
		return nil, err
	}
	return c.node(KindDate, start, year, sep1, month, sep2, day), nil
}

func (c *cursor) divider() (*Node, error) {
	if p := c.peek(); p != '-' && p != '/' {
		return nil, c.fail("date divider '-' or '/'")
	}
	c.i++
	return c.node(KindDivider, c.i-1), nil
}

func (c *cursor) shouldTotal() (*Node, error) {
	start := c.i
	c.i++ // "("
	d, err := c.duration()
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(c.line.text[c.i:], "!)") {
		return nil, c.fail("\"!)\"")
	}
	c.i += 2
	return c.node(KindShouldTotal, start, d), nil
}

func (c *cursor) sign() *Node {
	start := c.i
	if p := c.peek(); p == '+' || p == '-' {
		c.i++
	}
	return c.node(KindSign, start)
}

func (c *cursor) duration() (*Node, error) {
	start := c.i
	sign := c.sign()
	value := c.digits(0)
	if value == nil {
		return nil, c.failAt(start, "duration")
	}
	switch c.peek() {
	case 'm':
		c.i++
		return c.node(KindDurationMinute, start, sign, value), nil
	case 'h':
		c.i++
		if !isDigit(c.peek()) {
			return c.node(KindDurationHour, start, sign, value), nil
		}
		mark := c.i
		minutes := c.digits(0)
		n, _ := strconv.Atoi(minutes.Text)
		if len(minutes.Text) > 2 || n > 59 || c.peek() != 'm' {
			return nil, c.failAt(mark, "minutes 0-59 followed by 'm'")
		}
		c.i++
		return c.node(KindDurationHourMinute, start, sign, value, minutes), nil
	}
	return nil, c.fail("'h' or 'm'")
}

func (c *cursor) period() *Node {
	if c.i+2 > len(c.line.text) {
		return nil
	}
	word := c.line.text[c.i : c.i+2]
	if !strings.EqualFold(word, "am") && !strings.EqualFold(word, "pm") {
		return nil
	}
	c.i += 2
	return c.node(KindPeriod, c.i-2)
}

func (c *cursor) clock() (*Node, error) {
	start := c.i
	hour := c.digits(0)
	if hour == nil || len(hour.Text) > 2 {
		return nil, c.failAt(start, "time")
	}
	if c.peek() != ':' {
		return nil, c.fail("':'")
	}
	c.i++
	mark := c.i
	minute := c.digits(0)
	if minute == nil || len(minute.Text) != 2 || minute.Text[0] > '5' {
		return nil, c.failAt(mark, "minutes 00-59")
	}

	h, _ := strconv.Atoi(hour.Text)
	if period := c.period(); period != nil {
		if h < 1 || h > 12 {
			return nil, c.failAt(start, "12-hour clock time (hour 1-12)")
		}
		return c.node(KindTime12h, start, hour, minute, period), nil
	}
	if h > 24 {
		return nil, c.failAt(start, "24-hour clock time (hour 0-24)")
	}
	return c.node(KindTime24h, start, hour, minute), nil
}

func (c *cursor) time() (*Node, error) {
	start := c.i
	if c.peek() == '<' {
		c.i++
		t, err := c.clock()
		if err != nil {
			return nil, err
		}
		return c.node(KindBackwardShifted, start, t), nil
	}
	t, err := c.clock()
	if err != nil {
		return nil, err
	}
	if c.peek() == '>' {
		c.i++
		return c.node(KindForwardShifted, start, t), nil
	}
	return t, nil
}

func (c *cursor) timeRange() (*Node, error) {
	start := c.i
	from, err := c.time()
	if err != nil {
		return nil, err
	}
	left := c.whitespace(KindSpacing)
	if c.peek() != '-' {
		return nil, c.fail("'-'")
	}
	c.i++
	right := c.whitespace(KindSpacing)

	if c.peek() == '?' {
		mark := c.i
		for c.peek() == '?' {
			c.i++
		}
		placeholder := c.node(KindPlaceholder, mark)
		return c.node(KindOpenRange, start, from, left, right, placeholder), nil
	}
	if c.eof() {
		return nil, c.fail("end time or '?'")
	}
	to, err := c.time()
	if err != nil {
		return nil, err
	}
	return c.node(KindClosedRange, start, from, left, right, to), nil
}

// entryValue picks a time range when the text starts like a clock time and
// a duration otherwise.
func (c *cursor) entryValue() (*Node, error) {
	if c.looksLikeTime() {
		return c.timeRange()
	}
	return c.duration()
}

func (c *cursor) looksLikeTime() bool {
	if c.peek() == '<' {
		return true
	}
	j := c.i
	for j < len(c.line.text) && isDigit(c.line.text[j]) {
		j++
	}
	return j > c.i && j < len(c.line.text) && c.line.text[j] == ':'
}
