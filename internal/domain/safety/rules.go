package safety

// The rule tables below are small and hand-curated. Matching against them is
// substring containment over normalized names (see engine.go), which trades
// recall for simplicity: unlisted brand names are missed and coincidental
// substring overlap can false-positive. This is a documented limitation, not
// a bug — replacing it with a drug ontology is a separate project.

var allergyRules = []AllergyRule{
	{
		AllergyKeyword:  "penicillin",
		Contraindicated: []string{"amoxicillin", "ampicillin", "augmentin", "penicillin", "piperacillin"},
		Severity:        SeverityCritical,
		Mechanism:       "Beta-lactam cross-reactivity can trigger anaphylaxis in penicillin-allergic patients.",
		Alternatives:    []string{"Azithromycin", "Doxycycline", "Levofloxacin"},
	},
	{
		AllergyKeyword:  "sulfa",
		Contraindicated: []string{"sulfamethoxazole", "cotrimoxazole", "bactrim", "sulfasalazine"},
		Severity:        SeverityCritical,
		Mechanism:       "Sulfonamide hypersensitivity can cause severe cutaneous reactions including SJS/TEN.",
		Alternatives:    []string{"Nitrofurantoin", "Ciprofloxacin"},
	},
	{
		AllergyKeyword:  "aspirin",
		Contraindicated: []string{"aspirin", "ibuprofen", "naproxen", "diclofenac", "ketorolac"},
		Severity:        SeverityHigh,
		Mechanism:       "NSAID cross-sensitivity through COX-1 inhibition; risk of bronchospasm and urticaria.",
		Alternatives:    []string{"Paracetamol", "Tramadol"},
	},
	{
		AllergyKeyword:  "cephalosporin",
		Contraindicated: []string{"cefixime", "cefuroxime", "ceftriaxone", "cephalexin", "cefpodoxime"},
		Severity:        SeverityHigh,
		Mechanism:       "Shared beta-lactam ring; hypersensitivity can recur across cephalosporin generations.",
		Alternatives:    []string{"Azithromycin", "Doxycycline"},
	},
	{
		AllergyKeyword:  "codeine",
		Contraindicated: []string{"codeine", "tramadol", "morphine"},
		Severity:        SeverityMedium,
		Mechanism:       "Opioid cross-sensitivity; histamine-mediated reactions may recur with related opioids.",
		Alternatives:    []string{"Paracetamol", "Naproxen"},
	},
	{
		AllergyKeyword:  "latex",
		Contraindicated: []string{"latex"},
		Severity:        SeverityMedium,
		Mechanism:       "Latex-containing devices and closures can provoke contact or systemic reactions.",
		Alternatives:    []string{"Nitrile or vinyl alternatives"},
	},
}

var interactionRules = []InteractionRule{
	{
		DrugA:        "warfarin",
		DrugB:        "aspirin",
		Severity:     SeverityCritical,
		Title:        "Warfarin + Aspirin: major bleeding risk",
		Mechanism:    "Additive anticoagulant and antiplatelet effect markedly raises bleeding risk.",
		Alternatives: []string{"Paracetamol for analgesia", "Review anticoagulation indication"},
	},
	{
		DrugA:        "warfarin",
		DrugB:        "ibuprofen",
		Severity:     SeverityCritical,
		Title:        "Warfarin + NSAID: GI bleeding risk",
		Mechanism:    "NSAIDs inhibit platelet function and irritate gastric mucosa on top of anticoagulation.",
		Alternatives: []string{"Paracetamol"},
	},
	{
		DrugA:        "sildenafil",
		DrugB:        "nitroglycerin",
		Severity:     SeverityCritical,
		Title:        "PDE5 inhibitor + nitrate: severe hypotension",
		Mechanism:    "Combined cGMP-mediated vasodilation can cause refractory hypotension.",
		Alternatives: []string{"Separate dosing by at least 24 hours under specialist advice"},
	},
	{
		DrugA:        "methotrexate",
		DrugB:        "trimethoprim",
		Severity:     SeverityCritical,
		Title:        "Methotrexate + Trimethoprim: bone marrow suppression",
		Mechanism:    "Both drugs inhibit folate metabolism; combined use risks pancytopenia.",
		Alternatives: []string{"Nitrofurantoin", "Ciprofloxacin"},
	},
	{
		DrugA:        "simvastatin",
		DrugB:        "clarithromycin",
		Severity:     SeverityHigh,
		Title:        "Statin + macrolide: rhabdomyolysis risk",
		Mechanism:    "CYP3A4 inhibition raises statin levels several-fold.",
		Alternatives: []string{"Azithromycin", "Pause statin during the course"},
	},
	{
		DrugA:        "lisinopril",
		DrugB:        "spironolactone",
		Severity:     SeverityHigh,
		Title:        "ACE inhibitor + potassium-sparing diuretic: hyperkalemia",
		Mechanism:    "Both reduce potassium excretion; combined use can cause dangerous hyperkalemia.",
		Alternatives: []string{"Monitor potassium closely", "Thiazide diuretic"},
	},
	{
		DrugA:        "tramadol",
		DrugB:        "sertraline",
		Severity:     SeverityHigh,
		Title:        "Tramadol + SSRI: serotonin syndrome",
		Mechanism:    "Additive serotonergic activity; risk of agitation, hyperthermia, clonus.",
		Alternatives: []string{"Paracetamol", "Naproxen"},
	},
	{
		DrugA:        "metformin",
		DrugB:        "furosemide",
		Severity:     SeverityMedium,
		Title:        "Metformin + loop diuretic: lactic acidosis risk",
		Mechanism:    "Diuretic-induced renal impairment can reduce metformin clearance.",
		Alternatives: []string{"Monitor renal function"},
	},
	{
		DrugA:        "ciprofloxacin",
		DrugB:        "theophylline",
		Severity:     SeverityMedium,
		Title:        "Ciprofloxacin + Theophylline: theophylline toxicity",
		Mechanism:    "CYP1A2 inhibition reduces theophylline clearance.",
		Alternatives: []string{"Azithromycin"},
	},
}

// AllergyRules returns the static allergy rule table.
func AllergyRules() []AllergyRule { return allergyRules }

// InteractionRules returns the static drug-drug interaction rule table.
func InteractionRules() []InteractionRule { return interactionRules }
