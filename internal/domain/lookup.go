package domain

// LookupResult is the normalized outcome of a CPF lookup. Upstream responses
// come in more than one dialect; the client maps them all into this shape.
type LookupResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`

	Person *Person `json:"data,omitempty"`
}

// Person holds the normalized identity fields returned by the lookup API.
type Person struct {
	CPF        string   `json:"cpf"`
	Name       string   `json:"name"`
	BirthDate  string   `json:"birth_date,omitempty"`
	MotherName string   `json:"mother_name,omitempty"`
	Address    Address  `json:"address"`
	Phones     []string `json:"phones,omitempty"`
	Emails     []string `json:"emails,omitempty"`
	RG         string   `json:"rg,omitempty"`
	VoterID    string   `json:"voter_id,omitempty"`
	QueriedAt  string   `json:"queried_at"`
}

// Address is the normalized address block of a lookup result.
type Address struct {
	Street     string `json:"street,omitempty"`
	Number     string `json:"number,omitempty"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	ZipCode    string `json:"zip_code,omitempty"`
}
