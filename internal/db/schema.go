package db

// Table names.
const (
	TableElement = "element"
	TableNuclide = "nuclide"
)

// SchemaSQL contains the database schema initialization SQL.
// Records are keyed "<lang>_<item id>"; seq preserves the order the records
// were saved in.
const SchemaSQL = `
    -- ==========================================================================
    -- ELEMENT TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS element SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS lang ON element TYPE string;
    DEFINE FIELD IF NOT EXISTS seq ON element TYPE int;
    DEFINE FIELD IF NOT EXISTS item_id ON element TYPE string;
    DEFINE FIELD IF NOT EXISTS number ON element TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS symbol ON element TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS label ON element TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS period ON element TYPE option<int>;
    -- "group" is a keyword
    DEFINE FIELD IF NOT EXISTS group_number ON element TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS special ON element TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS classes ON element TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS fetched_at ON element TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS element_lang ON element FIELDS lang, seq;

    -- ==========================================================================
    -- NUCLIDE TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS nuclide SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS lang ON nuclide TYPE string;
    DEFINE FIELD IF NOT EXISTS seq ON nuclide TYPE int;
    DEFINE FIELD IF NOT EXISTS item_id ON nuclide TYPE string;
    DEFINE FIELD IF NOT EXISTS atomic_number ON nuclide TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS neutron_number ON nuclide TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS label ON nuclide TYPE option<string>;
    -- seconds
    DEFINE FIELD IF NOT EXISTS half_life ON nuclide TYPE option<float>;
    DEFINE FIELD IF NOT EXISTS decay_modes ON nuclide TYPE array<int> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS classes ON nuclide TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS fetched_at ON nuclide TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS nuclide_lang ON nuclide FIELDS lang, seq;
`
