package source

// DiscoveredFile is a statement export found during directory scanning.
type DiscoveredFile struct {
	Path    string
	Account string // file name without extension
}

// Header aliases, matched case-insensitively after trimming. The first
// header cell that matches a role claims it.
var (
	dateHeaders = []string{
		"date", "datum", "bokföringsdag", "bokforingsdag", "transaktionsdag",
		"booking date", "transaction date",
	}
	descriptionHeaders = []string{
		"description", "text", "beskrivning", "rubrik", "specifikation",
		"mottagare", "payee", "merchant",
	}
	amountHeaders = []string{
		"amount", "belopp", "sum", "summa",
	}
	idHeaders = []string{
		"id", "transaction id", "transaction_id", "transaktions-id", "verifikationsnummer",
	}
)

// columns holds the record index of each role, -1 when absent.
type columns struct {
	date, description, amount, id int
}
