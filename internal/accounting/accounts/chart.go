package accounts

// ChartEntry carries the bilingual display names for a chart account.
type ChartEntry struct {
	Name   string
	NameTh string
}

// defaultChart covers the reserved codes and the accounts the Thai statutory
// report templates expect. Lookups outside this map fall back to the name
// recorded on the ledger entry itself.
var defaultChart = map[string]ChartEntry{
	"11100": {Name: "Cash on Hand", NameTh: "เงินสด"},
	"11200": {Name: "Cash at Bank", NameTh: "เงินฝากธนาคาร"},
	"11300": {Name: "Accounts Receivable", NameTh: "ลูกหนี้การค้า"},
	"11301": {Name: "Allowance for Doubtful Accounts", NameTh: "ค่าเผื่อหนี้สงสัยจะสูญ"},
	"11400": {Name: "Inventory", NameTh: "สินค้าคงเหลือ"},
	"11500": {Name: "Prepaid Expenses", NameTh: "ค่าใช้จ่ายจ่ายล่วงหน้า"},
	"11600": {Name: "Accrued Income", NameTh: "รายได้ค้างรับ"},
	"12200": {Name: "Buildings", NameTh: "อาคาร"},
	"12201": {Name: "Accumulated Depreciation - Buildings", NameTh: "ค่าเสื่อมราคาสะสม - อาคาร"},
	"12400": {Name: "Equipment", NameTh: "อุปกรณ์"},
	"12401": {Name: "Accumulated Depreciation - Equipment", NameTh: "ค่าเสื่อมราคาสะสม - อุปกรณ์"},
	"12500": {Name: "Vehicles", NameTh: "ยานพาหนะ"},
	"12501": {Name: "Accumulated Depreciation - Vehicles", NameTh: "ค่าเสื่อมราคาสะสม - ยานพาหนะ"},
	"12600": {Name: "Software", NameTh: "โปรแกรมคอมพิวเตอร์"},
	"12601": {Name: "Accumulated Depreciation - Software", NameTh: "ค่าเสื่อมราคาสะสม - โปรแกรมคอมพิวเตอร์"},
	"21100": {Name: "Accounts Payable", NameTh: "เจ้าหนี้การค้า"},
	"21500": {Name: "Accrued Expenses", NameTh: "ค่าใช้จ่ายค้างจ่าย"},
	"21600": {Name: "Corporate Income Tax Payable", NameTh: "ภาษีเงินได้นิติบุคคลค้างจ่าย"},
	"21700": {Name: "Deferred Income", NameTh: "รายได้รับล่วงหน้า"},
	"21800": {Name: "Provision for Bonus", NameTh: "ประมาณการหนี้สินโบนัส"},
	"21900": {Name: "Provision for Leave", NameTh: "ประมาณการหนี้สินวันลา"},
	"22100": {Name: "Provision for Warranty", NameTh: "ประมาณการหนี้สินการรับประกัน"},
	"22200": {Name: "Provision for Legal Claims", NameTh: "ประมาณการหนี้สินคดีความ"},
	"31000": {Name: "Share Capital", NameTh: "ทุนจดทะเบียน"},
	"32000": {Name: "Retained Earnings", NameTh: "กำไรสะสม"},
	"39000": {Name: "Income Summary", NameTh: "สรุปรายได้"},
	"41100": {Name: "Sales Revenue", NameTh: "รายได้จากการขาย"},
	"42100": {Name: "Service Revenue", NameTh: "รายได้จากการให้บริการ"},
	"49000": {Name: "Other Income", NameTh: "รายได้อื่น"},
	"51100": {Name: "Cost of Goods Sold", NameTh: "ต้นทุนขาย"},
	"52100": {Name: "Salaries and Wages", NameTh: "เงินเดือนและค่าจ้าง"},
	"53400": {Name: "Depreciation Expense", NameTh: "ค่าเสื่อมราคา"},
	"58000": {Name: "Corporate Income Tax Expense", NameTh: "ภาษีเงินได้นิติบุคคล"},
	"59000": {Name: "Other Expenses", NameTh: "ค่าใช้จ่ายอื่น"},
}

// Lookup returns the chart entry for a code, or false when the code is not in
// the default chart.
func Lookup(code string) (ChartEntry, bool) {
	entry, ok := defaultChart[code]
	return entry, ok
}

// Name returns the chart display name for a code, falling back to the
// supplied name when the code is not charted.
func Name(code, fallback string) string {
	if entry, ok := defaultChart[code]; ok {
		return entry.Name
	}
	return fallback
}

// NameTh returns the Thai display name for a code, or empty when not charted.
func NameTh(code string) string {
	return defaultChart[code].NameTh
}
