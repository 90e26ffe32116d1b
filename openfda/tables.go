// Package openfda queries the OpenFDA drug adverse-event endpoint and turns its
// responses into ranked, labelled results. It owns the query grammar, the
// brand/generic synonym table, code translation, multi-call merging and the
// expiring result cache.
package openfda

import "fmt"

// SynonymTable maps lower-case brand names to lower-case generic names.
type SynonymTable map[string]string

// Resolve returns the generic name for a brand, or name itself when unknown.
func (t SynonymTable) Resolve(name string) string {
	if generic, ok := t[name]; ok {
		return generic
	}
	return name
}

// CodeTable maps a coded value returned by the API to a readable label.
type CodeTable map[string]string

// Label translates code, falling back to "Unknown (<code>)".
func (t CodeTable) Label(code string) string {
	if label, ok := t[code]; ok {
		return label
	}
	return fmt.Sprintf("Unknown (%s)", code)
}

// Synonyms is the brand to generic lookup applied to every drug name.
var Synonyms = SynonymTable{
	"tylenol":    "acetaminophen",
	"advil":      "ibuprofen",
	"motrin":     "ibuprofen",
	"aleve":      "naproxen",
	"benadryl":   "diphenhydramine",
	"claritin":   "loratadine",
	"zyrtec":     "cetirizine",
	"allegra":    "fexofenadine",
	"zantac":     "ranitidine",
	"pepcid":     "famotidine",
	"prilosec":   "omeprazole",
	"lipitor":    "atorvastatin",
	"zocor":      "simvastatin",
	"norvasc":    "amlodipine",
	"glucophage": "metformin",
	"synthroid":  "levothyroxine",
	"ambien":     "zolpidem",
	"xanax":      "alprazolam",
	"prozac":     "fluoxetine",
	"zoloft":     "sertraline",
	"paxil":      "paroxetine",
	"lexapro":    "escitalopram",
	"cymbalta":   "duloxetine",
	"wellbutrin": "bupropion",
	"desyrel":    "trazodone",
	"eliquis":    "apixaban",
	"xarelto":    "rivaroxaban",
	"pradaxa":    "dabigatran",
	"coumadin":   "warfarin",
	"januvia":    "sitagliptin",
	"tradjenta":  "linagliptin",
	"jardiance":  "empagliflozin",
	"farxiga":    "dapagliflozin",
	"invokana":   "canagliflozin",
	"ozempic":    "semaglutide",
	"victoza":    "liraglutide",
	"trulicity":  "dulaglutide",
	"humira":     "adalimumab",
	"enbrel":     "etanercept",
	"remicade":   "infliximab",
	"stelara":    "ustekinumab",
	"keytruda":   "pembrolizumab",
	"opdivo":     "nivolumab",
	"revlimid":   "lenalidomide",
	"rituxan":    "rituximab",
	"herceptin":  "trastuzumab",
	"avastin":    "bevacizumab",
	"spiriva":    "tiotropium",
	"advair":     "fluticasone/salmeterol",
	"symbicort":  "budesonide/formoterol",
	"singulair":  "montelukast",
	"lyrica":     "pregabalin",
	"neurontin":  "gabapentin",
	"topamax":    "topiramate",
	"lamictal":   "lamotrigine",
	"keppra":     "levetiracetam",
	"dilantin":   "phenytoin",
	"tegretol":   "carbamazepine",
	"depakote":   "divalproex",
	"vyvanse":    "lisdexamfetamine",
	"adderall":   "amphetamine/dextroamphetamine",
	"ritalin":    "methylphenidate",
	"concerta":   "methylphenidate",
	"focalin":    "dexmethylphenidate",
	"strattera":  "atomoxetine",
	"viagra":     "sildenafil",
	"cialis":     "tadalafil",
	"levitra":    "vardenafil",
	"bactrim":    "sulfamethoxazole/trimethoprim",
	"keflex":     "cephalexin",
	"augmentin":  "amoxicillin/clavulanate",
	"zithromax":  "azithromycin",
	"levaquin":   "levofloxacin",
	"cipro":      "ciprofloxacin",
	"diflucan":   "fluconazole",
	"tamiflu":    "oseltamivir",
	"valtrex":    "valacyclovir",
	"zofran":     "ondansetron",
	"phenergan":  "promethazine",
	"imitrex":    "sumatriptan",
	"flexeril":   "cyclobenzaprine",
	"soma":       "carisoprodol",
	"valium":     "diazepam",
	"ativan":     "lorazepam",
	"klonopin":   "clonazepam",
	"restoril":   "temazepam",
	"ultram":     "tramadol",
	"percocet":   "oxycodone/acetaminophen",
	"vicodin":    "hydrocodone/acetaminophen",
	"oxycontin":  "oxycodone",
	"dilaudid":   "hydromorphone",
	"ms contin":  "morphine",
	"duragesic":  "fentanyl",
	"microzide":  "hydrochlorothiazide",
	"hctz":       "hydrochlorothiazide",
	"prinivil":   "lisinopril",
	"zestril":    "lisinopril",
	"plavix":     "clopidogrel",
	"crestor":    "rosuvastatin",
	"nexium":     "esomeprazole",
	"protonix":   "pantoprazole",
	"lasix":      "furosemide",
	"toprol":     "metoprolol",
	"lopressor":  "metoprolol",
	"deltasone":  "prednisone",
	"seroquel":   "quetiapine",
	"abilify":    "aripiprazole",
	"risperdal":  "risperidone",
	"zyprexa":    "olanzapine",
	"mounjaro":   "tirzepatide",
	"wegovy":     "semaglutide",
	"rybelsus":   "semaglutide",
	"lantus":     "insulin glargine",
	"humalog":    "insulin lispro",
	"novolog":    "insulin aspart",
	"aspirin ec": "aspirin",
	"bayer":      "aspirin",
	"excedrin":   "acetaminophen/aspirin/caffeine",
	"sudafed":    "pseudoephedrine",
	"mucinex":    "guaifenesin",
	"flonase":    "fluticasone",
	"nasonex":    "mometasone",
	"ventolin":   "albuterol",
	"proair":     "albuterol",
	"xyzal":      "levocetirizine",
	"chantix":    "varenicline",
	"suboxone":   "buprenorphine/naloxone",
	"narcan":     "naloxone",
	"zyvox":      "linezolid",
	"flagyl":     "metronidazole",
	"macrobid":   "nitrofurantoin",
	"vibramycin": "doxycycline",
	"prograf":    "tacrolimus",
	"cellcept":   "mycophenolate",
	"gleevec":    "imatinib",
	"xeljanz":    "tofacitinib",
	"otezla":     "apremilast",
	"dupixent":   "dupilumab",
	"entresto":   "sacubitril/valsartan",
	"diovan":     "valsartan",
	"cozaar":     "losartan",
	"benicar":    "olmesartan",
	"tenormin":   "atenolol",
	"coreg":      "carvedilol",
	"cardizem":   "diltiazem",
	"lanoxin":    "digoxin",
	"aldactone":  "spironolactone",
	"zetia":      "ezetimibe",
	"tricor":     "fenofibrate",
	"fosamax":    "alendronate",
	"evista":     "raloxifene",
	"premarin":   "conjugated estrogens",
	"flomax":     "tamsulosin",
	"proscar":    "finasteride",
	"detrol":     "tolterodine",
	"aricept":    "donepezil",
	"namenda":    "memantine",
	"sinemet":    "carbidopa/levodopa",
	"requip":     "ropinirole",
	"mirapex":    "pramipexole",
	"effexor":    "venlafaxine",
	"pristiq":    "desvenlafaxine",
	"celexa":     "citalopram",
	"buspar":     "buspirone",
	"lithobid":   "lithium",
	"trileptal":  "oxcarbazepine",
	"vimpat":     "lacosamide",
	"celebrex":   "celecoxib",
	"mobic":      "meloxicam",
	"voltaren":   "diclofenac",
	"toradol":    "ketorolac",
	"medrol":     "methylprednisolone",
	"plaquenil":  "hydroxychloroquine",
	"trexall":    "methotrexate",
	"arava":      "leflunomide",
	"imuran":     "azathioprine",
	"paxlovid":   "nirmatrelvir/ritonavir",
	"lagevrio":   "molnupiravir",
	"biktarvy":   "bictegravir/emtricitabine/tenofovir alafenamide",
	"truvada":    "emtricitabine/tenofovir disoproxil",
	"harvoni":    "ledipasvir/sofosbuvir",
	"epclusa":    "sofosbuvir/velpatasvir",
}

// OutcomeCodes labels patient.reaction.reactionoutcome values.
var OutcomeCodes = CodeTable{
	"1": "Recovered/Resolved",
	"2": "Recovering/Resolving",
	"3": "Not Recovered/Not Resolved",
	"4": "Recovered/Resolved with Sequelae",
	"5": "Fatal",
	"6": "Unknown",
}

// QualificationCodes labels primarysource.qualification values.
var QualificationCodes = CodeTable{
	"1": "Physician",
	"2": "Pharmacist",
	"3": "Other Health Professional",
	"4": "Lawyer",
	"5": "Consumer or Non-Health Professional",
}

// SeriousOutcomeFields are queried one by one; order is the tie-break order
// of the merged result.
var SeriousOutcomeFields = []string{
	"seriousnessdeath",
	"seriousnesslifethreatening",
	"seriousnesshospitalization",
	"seriousnessdisabling",
	"seriousnesscongenitalanomali",
	"seriousnessother",
}

// SeriousOutcomeLabels names each seriousness field.
var SeriousOutcomeLabels = CodeTable{
	"seriousnessdeath":             "Death",
	"seriousnesslifethreatening":   "Life Threatening",
	"seriousnesshospitalization":   "Hospitalization",
	"seriousnessdisabling":         "Disabling",
	"seriousnesscongenitalanomali": "Congenital Anomaly",
	"seriousnessother":             "Other",
}
