package record

var hexElem = &Field{Kind: KindHex}

var cuSchema = &Schema{Name: "consumption_unit", Fields: []Field{
	{Name: "token_id", Kind: KindString},
	{Name: "owner", Kind: KindString},
	{Name: "consumption_value", Kind: KindUint128},
	{Name: "nominal_quantity", Kind: KindUint128},
	{Name: "nominal_currency", Kind: KindString},
	{Name: "commitment_tier", Kind: KindUint16},
	{Name: "hashes", Kind: KindList, Elem: hexElem},
}}

var tributeInputSchema = &Schema{Name: "tribute_input", Fields: []Field{
	{Name: "tribute_draft_id", Kind: KindHex},
	{Name: "owner", Kind: KindString},
	{Name: "worldwide_day", Kind: KindString},
	{Name: "settlement_currency", Kind: KindString},
	{Name: "settlement_base_amount", Kind: KindUint64},
	{Name: "settlement_atto_amount", Kind: KindUint128},
	{Name: "nominal_base_qty", Kind: KindUint64},
	{Name: "nominal_atto_qty", Kind: KindUint128},
	{Name: "cu_hashes", Kind: KindList, Elem: hexElem},
}}

var publicDataSchema = &Schema{Name: "public_data", Fields: []Field{
	{Name: "public_key", Kind: KindString},
	{Name: "merkle_root", Kind: KindString},
}}

var noteSchema = &Schema{Name: "note", Fields: []Field{
	{Name: "title", Kind: KindString},
	{Name: "verified", Kind: KindBool},
	{Name: "count", Kind: KindInt, Optional: true},
	{Name: "public_data", Kind: KindStruct, Schema: publicDataSchema, Optional: true},
	{Name: "meta", Kind: KindObject, Optional: true},
}}

const (
	cuOwner = "cosmwasm1j2mmggve9m6fpuahtzvwcrj3rud9cqjz9qva39cekgpk9vprae8s4haddx"
	cuHash  = "872be89dd82bcc6cf949d718f9274a624c927cfc91905f2bbb72fa44c9ea876d"
)

func sampleCU() Record {
	return New(cuSchema,
		F("token_id", String("1")),
		F("owner", String(cuOwner)),
		F("consumption_value", String("100")),
		F("nominal_quantity", String("100")),
		F("nominal_currency", String("usd")),
		F("commitment_tier", Int(1)),
		F("hashes", Strings(cuHash)),
	)
}

func sampleTributeInput() Record {
	return New(tributeInputSchema,
		F("cu_hashes", Strings(cuHash, "a3f1c2e4b5d60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90")),
		F("nominal_atto_qty", String("500000000000000000")),
		F("nominal_base_qty", String("125")),
		F("settlement_atto_amount", String("0")),
		F("settlement_base_amount", String("250")),
		F("settlement_currency", String("usd")),
		F("worldwide_day", String("2025-07-15")),
		F("owner", String("outbe1qqqsyqcyq5rqwzqfpg9scrgwpugpzysng67f9q")),
		F("tribute_draft_id", String("5e2b8f7ac4d1e6093b7a2c5f8e1d4a6b9c0e3f2a1b4c7d6e9f8a0b3c2d5e4f61")),
	)
}
