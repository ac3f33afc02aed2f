package verify

import (
	"context"
	"math/rand"
	"testing"

	"github.com/xtxerr/chunkit/internal/aggregate"
	"github.com/xtxerr/chunkit/internal/errors"
	chunktest "github.com/xtxerr/chunkit/internal/testing"
)

func engine(t *testing.T, data []byte) []aggregate.Entry {
	t.Helper()
	m, err := aggregate.Aggregate(data, aggregate.Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	return aggregate.Merge(m)
}

func TestVerifier_Summarize(t *testing.T) {
	path := chunktest.WriteFile(t, "m.txt", []byte("A;1.0\nB;2.0\nA;3.0\n"))

	v, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer v.Close()

	got, err := v.Summarize(context.Background(), path)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(got))
	}
	a := got[0]
	if a.Key != "A" || a.Min != 1.0 || a.Max != 3.0 || a.Sum != 4.0 || a.Count != 2 {
		t.Errorf("A = %+v", a)
	}
}

func TestVerify_AgreesWithEngine(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	data := chunktest.GenerateMeasurements(rng, 5000, 0)
	path := chunktest.WriteFile(t, "it's measurements.txt", data)

	res, err := Verify(context.Background(), path, engine(t, data), DefaultOptions())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !res.OK() || res.Records != 5000 {
		t.Errorf("result = %+v", res)
	}
}

func TestVerify_KeysAreRawBytes(t *testing.T) {
	data := []byte("\"A\";1.0\nB;2.0\n\"A\";3.0\nC\\;4.0\n'D';5.0\n")
	path := chunktest.WriteFile(t, "quoted.txt", data)

	res, err := Verify(context.Background(), path, engine(t, data), DefaultOptions())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !res.OK() || res.Keys != 4 || res.Records != 5 {
		t.Errorf("result = %+v", res)
	}
}

func TestVerify_ReportsMismatches(t *testing.T) {
	data := []byte("A;1.0\nB;2.0\nA;3.0\n")
	path := chunktest.WriteFile(t, "m.txt", data)

	entries := engine(t, data)
	entries[0].Max = 4.0
	entries = append(entries, aggregate.Entry{Key: "C", Sensor: aggregate.Sensor{Min: 1, Max: 1, Sum: 1, Count: 1}})

	res, err := Verify(context.Background(), path, entries, DefaultOptions())
	if !errors.Is(err, errors.ErrVerify) {
		t.Fatalf("expected ErrVerify, got %v", err)
	}

	fields := map[string]bool{}
	for _, m := range res.Mismatches {
		fields[m.Key+"/"+m.Field] = true
	}
	if !fields["A/max"] || !fields["C/unexpected"] || len(fields) != 2 {
		t.Errorf("mismatches = %v", res.Mismatches)
	}
}

func TestVerify_MissingInput(t *testing.T) {
	_, err := Verify(context.Background(), t.TempDir()+"/nope.txt", nil, DefaultOptions())
	if !errors.Is(err, errors.ErrVerify) {
		t.Errorf("expected ErrVerify, got %v", err)
	}
}
