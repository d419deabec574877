package billing

const (
	// BaseConsultationFee is charged once on every bill.
	BaseConsultationFee = 500.0

	// TimeRatePerMinute is charged per elapsed minute, one-minute minimum.
	TimeRatePerMinute = 10.0

	// TaxRate applies to the subtotal, rounded to the nearest unit.
	TaxRate = 0.05
)

var procedureRules = []ProcedureRule{
	{
		Keywords:    []string{"ecg", "electrocardiogram"},
		Description: "ECG (12-lead)",
		UnitPrice:   300.0,
		Category:    CategoryInvestigation,
	},
	{
		Keywords:    []string{"x-ray", "xray", "radiograph"},
		Description: "X-ray (single view)",
		UnitPrice:   450.0,
		Category:    CategoryInvestigation,
	},
	{
		Keywords:    []string{"blood test", "cbc", "complete blood count", "blood work"},
		Description: "Complete blood count",
		UnitPrice:   350.0,
		Category:    CategoryInvestigation,
	},
	{
		Keywords:    []string{"blood sugar", "glucose test", "hba1c"},
		Description: "Blood glucose panel",
		UnitPrice:   250.0,
		Category:    CategoryInvestigation,
	},
	{
		Keywords:    []string{"urine test", "urinalysis"},
		Description: "Urinalysis",
		UnitPrice:   200.0,
		Category:    CategoryInvestigation,
	},
	{
		Keywords:    []string{"dressing", "wound care"},
		Description: "Wound dressing",
		UnitPrice:   150.0,
		Category:    CategoryProcedure,
	},
	{
		Keywords:    []string{"suture", "stitches"},
		Description: "Suturing (minor)",
		UnitPrice:   600.0,
		Category:    CategoryProcedure,
	},
	{
		Keywords:    []string{"injection", "intramuscular", "iv push"},
		Description: "Injection administration",
		UnitPrice:   100.0,
		Category:    CategoryProcedure,
	},
	{
		Keywords:    []string{"nebulization", "nebuliser", "nebulizer"},
		Description: "Nebulization session",
		UnitPrice:   250.0,
		Category:    CategoryProcedure,
	},
	{
		Keywords:    []string{"vaccination", "vaccine", "immunization"},
		Description: "Vaccine administration",
		UnitPrice:   400.0,
		Category:    CategoryMedication,
	},
	{
		Keywords:    []string{"crepe bandage", "splint", "sling"},
		Description: "Orthopedic support supply",
		UnitPrice:   180.0,
		Category:    CategoryEquipment,
	},
}

// ProcedureRules returns the static procedure/price table.
func ProcedureRules() []ProcedureRule { return procedureRules }
