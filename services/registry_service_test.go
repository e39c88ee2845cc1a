package services

import (
	"context"
	"errors"
	"testing"
)

func TestRegistryAddAndList(t *testing.T) {
	svc := NewRegistryService(NewMemoryRegistryStore())
	ctx := context.Background()

	names := []string{"依珊", "Lisa", "Tina"}
	for _, name := range names {
		if err := svc.AddTeacher(ctx, LocationTaipei, name); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	got, err := svc.ListTeachers(ctx, LocationTaipei)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(names) {
		t.Fatalf("expected %d teachers, got %d", len(names), len(got))
	}
	for i := range names {
		if got[i] != names[i] {
			t.Fatalf("insertion order not preserved at %d: %s vs %s", i, got[i], names[i])
		}
	}
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	svc := NewRegistryService(NewMemoryRegistryStore())
	ctx := context.Background()

	if err := svc.AddTeacher(ctx, LocationTaipei, "依珊"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := svc.AddTeacher(ctx, LocationTaipei, "依珊")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if want := "「依珊」已在清單中"; verr.Reason != want {
		t.Fatalf("expected %q, got %q", want, verr.Reason)
	}

	got, _ := svc.ListTeachers(ctx, LocationTaipei)
	if len(got) != 1 {
		t.Fatalf("duplicate must not extend the list, got %d entries", len(got))
	}
}

func TestRegistryRejectsEmptyValue(t *testing.T) {
	svc := NewRegistryService(NewMemoryRegistryStore())
	ctx := context.Background()

	for _, value := range []string{"", "   "} {
		err := svc.AddContent(ctx, LocationTaipei, value)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError for %q, got %v", value, err)
		}
		if verr.Reason != "課程內容不可為空" {
			t.Fatalf("unexpected message: %q", verr.Reason)
		}
	}
}

func TestRegistryListsArePerLocation(t *testing.T) {
	svc := NewRegistryService(NewMemoryRegistryStore())
	ctx := context.Background()

	if err := svc.AddContent(ctx, LocationTaipei, "基礎彩妝"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.AddContent(ctx, LocationTaoyuan, "皮膚學概論"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	taipei, _ := svc.ListContents(ctx, LocationTaipei)
	taoyuan, _ := svc.ListContents(ctx, LocationTaoyuan)
	if len(taipei) != 1 || taipei[0] != "基礎彩妝" {
		t.Fatalf("unexpected taipei contents: %v", taipei)
	}
	if len(taoyuan) != 1 || taoyuan[0] != "皮膚學概論" {
		t.Fatalf("unexpected taoyuan contents: %v", taoyuan)
	}
}

func TestRegistryUnknownLocationFallsBack(t *testing.T) {
	svc := NewRegistryService(NewMemoryRegistryStore())
	ctx := context.Background()

	if err := svc.AddTeacher(ctx, "火星", "王小美"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Unknown locations map onto the default branch, so the entry must be
	// visible there.
	got, _ := svc.ListTeachers(ctx, DefaultLocation)
	if len(got) != 1 || got[0] != "王小美" {
		t.Fatalf("expected fallback to default location, got %v", got)
	}
}
