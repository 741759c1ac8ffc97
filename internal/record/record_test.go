package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outbe/tribute-attest/internal/protoerr"
)

func TestBind_RoundTrip(t *testing.T) {
	input := `{
		"hashes": ["` + cuHash + `"],
		"commitment_tier": 1,
		"nominal_currency": "usd",
		"owner": "` + cuOwner + `",
		"nominal_quantity": "100",
		"consumption_value": "100",
		"token_id": "1"
	}`

	rec, err := Bind(cuSchema, []byte(input))
	require.NoError(t, err)
	assert.Equal(t, MustEncode(sampleCU()), MustEncode(rec))

	again, err := Bind(cuSchema, MustEncode(rec))
	require.NoError(t, err)
	assert.Equal(t, MustEncode(rec), MustEncode(again))
}

func TestBind_Nested(t *testing.T) {
	rec, err := Bind(noteSchema, []byte(`{"title":"t","verified":true,"count":null,
		"public_data":{"public_key":"pk","merkle_root":"mr"},"meta":{"k":[1,"two",false]}}`))
	require.NoError(t, err)

	_, hasCount := rec.Get("count")
	assert.False(t, hasCount, "null optional field is absent")

	pd, ok := rec.Get("public_data")
	require.True(t, ok)
	nested, ok := pd.(Record)
	require.True(t, ok)
	assert.Equal(t, "public_data", nested.Schema.Name)

	assert.Equal(t, `{"title":"t","verified":true,"public_data":{"public_key":"pk","merkle_root":"mr"},"meta":{"k":[1,"two",false]}}`,
		string(MustEncode(rec)))
}

func TestBind_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"token_id":`},
		{"not an object", `["a"]`},
		{"trailing data", `{"title":"t","verified":true} {}`},
		{"undeclared field", `{"title":"t","verified":true,"extra":1}`},
		{"float", `{"title":"t","verified":true,"count":1.5}`},
		{"exponent", `{"title":"t","verified":true,"count":1e3}`},
		{"null required", `{"title":null,"verified":true}`},
		{"wrong type", `{"title":"t","verified":"yes"}`},
		{"float in free object", `{"title":"t","verified":true,"meta":{"x":0.1}}`},
		{"null in free object", `{"title":"t","verified":true,"meta":{"x":null}}`},
		{"missing required", `{"title":"t"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bind(noteSchema, []byte(tt.input))
			require.Error(t, err)
			assert.True(t, protoerr.IsEncodingError(err), "got %T: %v", err, err)
		})
	}
}

func TestBind_AmountsMustBeStrings(t *testing.T) {
	_, err := Bind(cuSchema, []byte(`{"token_id":"1","owner":"o","consumption_value":100,"nominal_quantity":"1",
		"nominal_currency":"usd","commitment_tier":1,"hashes":[]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "consumption_value")
}

func TestRecord_MarshalJSON(t *testing.T) {
	wrapped := struct {
		Entity Record `json:"entity"`
	}{Entity: sampleCU()}

	got, err := json.Marshal(wrapped)
	require.NoError(t, err)
	assert.Equal(t, `{"entity":`+string(MustEncode(sampleCU()))+`}`, string(got))
}

func TestRecord_WithDoesNotMutate(t *testing.T) {
	orig := sampleCU()
	_ = orig.With("token_id", String("2"))
	_ = orig.Without("owner")

	id, _ := orig.GetString("token_id")
	assert.Equal(t, "1", id)
	_, ok := orig.Get("owner")
	assert.True(t, ok)
}

func TestSchema_Validate(t *testing.T) {
	require.NoError(t, cuSchema.Validate())
	require.NoError(t, noteSchema.Validate())

	tests := []struct {
		name   string
		schema *Schema
	}{
		{"nil", nil},
		{"no name", &Schema{}},
		{"duplicate", &Schema{Name: "s", Fields: []Field{{Name: "a", Kind: KindString}, {Name: "a", Kind: KindInt}}}},
		{"unknown kind", &Schema{Name: "s", Fields: []Field{{Name: "a", Kind: "float"}}}},
		{"list without elem", &Schema{Name: "s", Fields: []Field{{Name: "a", Kind: KindList}}}},
		{"struct without schema", &Schema{Name: "s", Fields: []Field{{Name: "a", Kind: KindStruct}}}},
		{"unnamed field", &Schema{Name: "s", Fields: []Field{{Kind: KindString}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.schema.Validate())
		})
	}

	assert.Equal(t, []string{"token_id", "owner", "consumption_value", "nominal_quantity", "nominal_currency", "commitment_tier", "hashes"},
		cuSchema.FieldNames())
}

func TestObject_SortedKeys(t *testing.T) {
	// U+1F600 is a surrogate pair in UTF-16 (0xD83D...) and sorts before U+FB01 (0xFB01),
	// while UTF-8 byte order would put it after.
	emoji := string(rune(0x1F600))
	ligature := string(rune(0xFB01))
	obj := Object{ligature: Int(1), emoji: Int(2), "a": Int(3)}
	assert.Equal(t, []string{"a", emoji, ligature}, obj.SortedKeys())
}
