package jsonschema_test

import (
	"slices"
	"testing"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/oarkflow/jsonschema"
	"github.com/oarkflow/jsonschema/jsonmap"
)

const personSchema = `{
	"type": "object",
	"required": ["name", "email"],
	"properties": {
		"name": {"type": "string", "minLength": 1, "maxLength": 12},
		"email": {"type": "string", "format": "email"},
		"age": {"type": "integer", "minimum": 0, "maximum": 120},
		"tags": {"type": "array", "items": {"type": "string"}, "uniqueItems": true},
		"address": {
			"type": "object",
			"properties": {"zip": {"type": "string", "pattern": "^[0-9]{5}$"}},
			"additionalProperties": false
		}
	},
	"oneOf": [{"required": ["age"]}, {"required": ["tags"]}],
	"unevaluatedProperties": false
}`

func fakePerson(f *gofakeit.Faker) map[string]any {
	p := map[string]any{}
	if f.Bool() {
		p["name"] = f.FirstName()
	}
	if f.Bool() {
		p["email"] = f.Email()
	} else if f.Bool() {
		p["email"] = f.Word()
	}
	if f.Bool() {
		p["age"] = int64(f.IntRange(-10, 150))
	}
	if f.Bool() {
		tags := []any{}
		for i := f.IntRange(0, 3); i > 0; i-- {
			tags = append(tags, f.RandomString([]string{"a", "b", "c"}))
		}
		p["tags"] = tags
	}
	if f.Bool() {
		addr := map[string]any{"zip": f.Zip()}
		if f.Bool() {
			addr["city"] = f.City()
		}
		p["address"] = addr
	}
	if f.Number(0, 9) == 0 {
		p["extra"] = f.Word()
	}
	return p
}

// Short-circuit evaluation must agree with full evaluation, and the
// classic output must be empty exactly when the instance is valid.
func TestIsValidMatchesValidate(t *testing.T) {
	s := compile(t, personSchema)
	f := gofakeit.New(42)
	for i := 0; i < 500; i++ {
		p := fakePerson(f)
		r := validate(t, s, p)
		if got := s.IsValid(p); got != r.Valid {
			t.Fatalf("instance %v: IsValid = %v, Validate = %v", p, got, r.Valid)
		}
		errs := slices.Collect(r.Classic())
		if r.Valid != (len(errs) == 0) {
			t.Fatalf("instance %v: valid = %v with %d classic errors", p, r.Valid, len(errs))
		}
		for _, e := range errs {
			if e.Error == "" || e.Type == "" {
				t.Fatalf("incomplete classic error %+v", e)
			}
		}
	}
}

// Validation never mutates the instance unless defaults are inserted.
func TestValidateDoesNotMutate(t *testing.T) {
	s := compile(t, personSchema)
	f := gofakeit.New(7)
	for i := 0; i < 100; i++ {
		p := fakePerson(f)
		before := jsonmap.Clone(p)
		validate(t, s, p)
		if !jsonmap.Equal(before, p) {
			t.Fatalf("instance changed from %v to %v", before, p)
		}
	}
}

func BenchmarkIsValid(b *testing.B) {
	s := compile(b, personSchema)
	f := gofakeit.New(1)
	people := make([]map[string]any, 64)
	for i := range people {
		people[i] = fakePerson(f)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.IsValid(people[i%len(people)])
	}
}

func BenchmarkValidate(b *testing.B) {
	s := compile(b, personSchema)
	f := gofakeit.New(1)
	people := make([]map[string]any, 64)
	for i := range people {
		people[i] = fakePerson(f)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r, _ := s.Validate(people[i%len(people)])
		for range r.Classic() {
		}
	}
}

func BenchmarkCompile(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := jsonschema.Compile([]byte(personSchema)); err != nil {
			b.Fatal(err)
		}
	}
}
