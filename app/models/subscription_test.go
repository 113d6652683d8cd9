package models

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestStringBoolScan(t *testing.T) {
	cases := []struct {
		in   interface{}
		want bool
	}{
		{"true", true},
		{"false", false},
		{"1", true},
		{"0", false},
		{[]byte("true"), true},
		{[]byte("no"), false},
		{true, true},
		{nil, false},
	}
	for _, tc := range cases {
		var b StringBool
		if err := b.Scan(tc.in); err != nil {
			t.Fatalf("Scan(%v): %v", tc.in, err)
		}
		if b.Bool() != tc.want {
			t.Fatalf("Scan(%v) = %v, want %v", tc.in, b.Bool(), tc.want)
		}
	}
}

func TestEntitled(t *testing.T) {
	sub := &Subscription{IsActive: true, Status: SubscriptionStatusActive}
	if !sub.Entitled() {
		t.Fatal("active subscription should be entitled")
	}

	sub.Status = SubscriptionStatusCancelled
	if sub.Entitled() {
		t.Fatal("cancelled subscription should not be entitled even while is_active")
	}

	sub.Status = SubscriptionStatusOverdue
	sub.IsActive = false
	if sub.Entitled() {
		t.Fatal("inactive overdue subscription should not be entitled")
	}
}

// The guarded save matches rows on updated_at, so the column needs
// microsecond precision. With plain TIMESTAMP two writes in the same second
// are indistinguishable and the guard passes when it should not.
func TestUpdatedAtUsesMicrosecondPrecision(t *testing.T) {
	field, ok := reflect.TypeOf(Subscription{}).FieldByName("UpdatedAt")
	if !ok {
		t.Fatal("Subscription has no UpdatedAt field")
	}
	if field.Type != reflect.TypeOf(time.Time{}) {
		t.Fatalf("UpdatedAt has type %v, want time.Time", field.Type)
	}
	tag := field.Tag.Get("gorm")
	if !strings.Contains(tag, "type:timestamp(6)") {
		t.Fatalf("UpdatedAt gorm tag %q lacks timestamp(6) column type", tag)
	}
}
