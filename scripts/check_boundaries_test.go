package main

import "testing"

func TestReplicationCoreMustNotImportBackends(t *testing.T) {
	got := validateRuntimeImport("internal/shared/replication/publisher.go", 7,
		"cardsync/internal/platform/messaging", "cardsync/internal/shared/replication")
	if len(got) != 1 {
		t.Fatalf("expected one violation, got %+v", got)
	}

	got = validateRuntimeImport("internal/shared/replication/publisher.go", 8,
		"cardsync/internal/platform/telemetry", "cardsync/internal/shared/replication")
	if len(got) != 0 {
		t.Fatalf("telemetry is allowed, got %+v", got)
	}
}

func TestPlatformMustNotImportContexts(t *testing.T) {
	got := validateRuntimeImport("internal/platform/loopback/memory.go", 5,
		"cardsync/contexts/study/flashcard-service/domain/entities", "cardsync/internal/platform/loopback")
	if len(got) != 1 {
		t.Fatalf("expected one violation, got %+v", got)
	}

	for _, pkg := range []string{"cardsync/internal/app/bootstrap", "cardsync/internal/platform/httpserver"} {
		got = validateRuntimeImport("x.go", 1, "cardsync/contexts/study/quiz-service", pkg)
		if len(got) != 0 {
			t.Fatalf("%s may import contexts, got %+v", pkg, got)
		}
	}
}

func TestPortsMayNotImportPlatformGuards(t *testing.T) {
	prefix := "cardsync/contexts/study/quiz-service"

	got := validateContractImport("contexts/study/quiz-service/ports/ports.go", 4,
		"cardsync/internal/platform/circuitbreaker", "ports", prefix)
	if len(got) != 1 {
		t.Fatalf("expected one violation, got %+v", got)
	}

	got = validateContractImport("contexts/study/quiz-service/ports/ports.go", 5,
		prefix+"/domain/entities", "ports", prefix)
	if len(got) != 0 {
		t.Fatalf("domain import is allowed, got %+v", got)
	}
}
