package saga

// SubRecordType identifies the kind of owned item a sub-record materializes
type SubRecordType string

// Sub-record types
const (
	SubRecordFeat       SubRecordType = "feat"
	SubRecordTalent     SubRecordType = "talent"
	SubRecordForcePower SubRecordType = "force_power"
)

// SubRecord describes an owned entry attached to the character, such as a
// granted feat or talent materialized as its own record.
type SubRecord struct {
	Type SubRecordType `json:"type"`
	Name string        `json:"name"`
}

// MutationPacket is the batch of field updates and sub-record changes
// produced by one finalize call. Built fresh per finalize, consumed once,
// then discarded.
type MutationPacket struct {
	CharacterID        string                 `json:"character_id"`
	FieldUpdates       map[string]interface{} `json:"field_updates"`
	SubRecordsToCreate []SubRecord            `json:"sub_records_to_create"`
	SubRecordsToDelete []SubRecord            `json:"sub_records_to_delete"`
}

// Snapshot is an immutable full copy of the character record taken before a
// transaction, used for diffing and rollback.
type Snapshot struct {
	ID          string        `json:"id"`
	CharacterID string        `json:"character_id"`
	Label       string        `json:"label"`
	TakenAt     int64         `json:"taken_at"`
	Data        CharacterData `json:"data"`
}

// FieldChange is one entry in a structural diff between two snapshots
type FieldChange struct {
	Path     string      `json:"path"`
	OldValue interface{} `json:"old_value"`
	NewValue interface{} `json:"new_value"`
}
