package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
		{NewDate(9999, 12, 31), true},
		{NewDate(10000, 1, 1), false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-11-13")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 11 || d.Day() != 13 {
		t.Fatalf("unexpected date %v", d)
	}
	if d.String() != "2024-11-13" {
		t.Fatalf("round trip mismatch: %q", d.String())
	}

	for _, bad := range []string{"", "2024-13-01", "13/11/2024", "2024-02-30"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrValidation) {
			t.Fatalf("%q expected validation error, got %v", bad, err)
		}
	}
}

func TestDateOfUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// 2024-11-13 23:30 UTC is already the 14th in UTC+10
	ts := time.Date(2024, 11, 13, 23, 30, 0, 0, time.UTC).In(loc)
	if got := DateOf(ts).String(); got != "2024-11-14" {
		t.Fatalf("expected 2024-11-14, got %s", got)
	}
}

func TestDateJSON(t *testing.T) {
	in := struct {
		Date Date `json:"date"`
	}{Date: NewDate(2024, 2, 29)}

	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"date":"2024-02-29"}` {
		t.Fatalf("unexpected json %s", b)
	}

	var out struct {
		Date Date `json:"date"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Date.Equal(in.Date) {
		t.Fatalf("expected %v, got %v", in.Date, out.Date)
	}
}

func TestTimeFrameContains(t *testing.T) {
	tf := TimeFrame{Granularity: Weekly, Start: NewDate(2024, 11, 11), End: NewDate(2024, 11, 17)}
	cases := map[string]bool{
		"2024-11-10": false,
		"2024-11-11": true,
		"2024-11-14": true,
		"2024-11-17": true,
		"2024-11-18": false,
	}
	for s, want := range cases {
		d, _ := ParseDate(s)
		if got := tf.Contains(d); got != want {
			t.Fatalf("Contains(%s) = %v, want %v", s, got, want)
		}
	}
}

func TestTimeFrameContainsPastYear9999(t *testing.T) {
	tf := TimeFrame{Granularity: Weekly, Start: NewDate(9999, 12, 27), End: NewDate(10000, 1, 2)}
	if !tf.Contains(NewDate(9999, 12, 31)) {
		t.Fatal("expected 9999-12-31 inside the window")
	}
	if !tf.Contains(NewDate(10000, 1, 1)) {
		t.Fatal("expected 10000-01-01 inside the window")
	}
	if tf.Contains(NewDate(9999, 12, 26)) {
		t.Fatal("expected 9999-12-26 outside the window")
	}
}

func TestClampToStorable(t *testing.T) {
	start, end, ok := ClampToStorable(NewDate(9999, 12, 27), NewDate(10000, 1, 2))
	if !ok || start.String() != "9999-12-27" || end.String() != "9999-12-31" {
		t.Fatalf("unexpected clamp %s..%s ok=%v", start, end, ok)
	}
	if _, _, ok := ClampToStorable(NewDate(10000, 1, 1), NewDate(10000, 12, 31)); ok {
		t.Fatal("a range past the last storable date should hold nothing")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Title:      "ok",
		Amount:     Money{Cents: 100},
		Date:       NewDate(2025, 1, 1),
		CategoryID: 1,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'x'
	}

	bads := []struct {
		e    Expense
		want error
	}{
		{Expense{Title: "a", Amount: Money{Cents: 1}, CategoryID: 1}, ErrInvalidDate},
		{Expense{Title: " ", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), CategoryID: 1}, ErrEmptyTitle},
		{Expense{Title: string(long), Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), CategoryID: 1}, ErrTitleTooLong},
		{Expense{Title: "a", Amount: Money{Cents: 0}, Date: NewDate(2025, 1, 1), CategoryID: 1}, ErrInvalidAmount},
		{Expense{Title: "a", Amount: Money{Cents: -5}, Date: NewDate(2025, 1, 1), CategoryID: 1}, ErrInvalidAmount},
		{Expense{Title: "a", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1)}, ErrMissingCategory},
	}
	for i, tc := range bads {
		err := tc.e.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected a validation error, got %v", i, err)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{Name: "Pets", Icon: IconPets, Color: ColorGray}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		c    Category
		want error
	}{
		{Category{Name: "", Icon: IconPets, Color: ColorGray}, ErrEmptyName},
		{Category{Name: "Pets", Color: ColorGray}, ErrInvalidIcon},
		{Category{Name: "Pets", Icon: "DRAGONS", Color: ColorGray}, ErrInvalidIcon},
		{Category{Name: "Pets", Icon: IconPets}, ErrInvalidColor},
	}
	for i, tc := range cases {
		if err := tc.c.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	if err := (Budget{Currency: EUR, Amount: Money{Cents: 0}}).Validate(); err != nil {
		t.Fatalf("zero budget should be allowed, got %v", err)
	}
	if err := (Budget{Currency: EUR, Amount: Money{Cents: -1}}).Validate(); !errors.Is(err, ErrNegativeBudget) {
		t.Fatalf("expected ErrNegativeBudget, got %v", err)
	}
	if err := (Budget{Currency: "XYZ", Amount: Money{Cents: 1}}).Validate(); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
	if err := (Budget{Currency: EUR, Amount: Money{Cents: MaxAmountCents + 1}}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestParseEnums(t *testing.T) {
	if c, err := ParseCurrency(" rup "); err != nil || c != RUP || c.Symbol() != "₹" {
		t.Fatalf("unexpected currency %q (%v)", c, err)
	}
	if i, err := ParseIcon("personal-care"); err != nil || i != IconPersonalCare {
		t.Fatalf("unexpected icon %q (%v)", i, err)
	}
	if c, err := ParseColor("medium turquoise"); err != nil || c.Hex() != "#48D1CC" {
		t.Fatalf("unexpected color %q (%v)", c, err)
	}
	if _, err := ParseGranularity("Fortnightly"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(Icons()) != 35 || len(Colors()) != 20 {
		t.Fatalf("unexpected palette sizes: %d icons, %d colors", len(Icons()), len(Colors()))
	}
}

func TestDefaultCategories(t *testing.T) {
	seed := DefaultCategories()
	if len(seed) != 10 {
		t.Fatalf("expected 10 seed categories, got %d", len(seed))
	}
	seen := map[string]bool{}
	for _, c := range seed {
		if err := c.Validate(); err != nil {
			t.Fatalf("seed category %q invalid: %v", c.Name, err)
		}
		if seen[c.Name] {
			t.Fatalf("duplicate seed category %q", c.Name)
		}
		seen[c.Name] = true
	}
}
