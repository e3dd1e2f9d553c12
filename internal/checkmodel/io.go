package checkmodel

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/viewtouch/posk/internal/money"
	"github.com/viewtouch/posk/internal/persist"
	"github.com/viewtouch/posk/internal/serial"
	"github.com/viewtouch/posk/internal/timeinfo"
)

// CurrentCheckVersion is the on-disk check_<serial>.dat format version this
// build writes (spec §6).
const CurrentCheckVersion int32 = 1

// checkPath returns the conventional per-check file path under dataDir
// (spec §3: Check.Filename, spec §5 "current" working directory).
func checkPath(dataDir string, n serial.Number) string {
	return filepath.Join(dataDir, "current", fmt.Sprintf("check_%d.dat", n))
}

// Save persists check to dataDir/current/check_<serial>.dat via the
// standard backup-then-rename atomic write (spec §5, §8).
func Save(check *Check, dataDir string) error {
	path := checkPath(dataDir, check.SerialNumber)
	err := persist.AtomicWrite(path, CurrentCheckVersion, func(f *persist.OutputDataFile) error {
		writeCheck(f, check)
		return f.Err()
	})
	if err != nil {
		return err
	}
	check.Dirty = false
	return nil
}

// Load reads a previously-Saved Check back from dataDir.
func Load(dataDir string, n serial.Number) (*Check, error) {
	var check *Check
	path := checkPath(dataDir, n)
	err := persist.ReadVersioned(path, func(f *persist.InputDataFile) error {
		c, rerr := readCheck(f)
		if rerr != nil {
			return rerr
		}
		check = c
		return f.Err()
	})
	if err != nil {
		return nil, err
	}
	return check, nil
}

func writeCheck(f *persist.OutputDataFile, c *Check) {
	f.WriteInt32(int32(c.SerialNumber))
	f.WriteStr(c.Label)
	f.WriteInt32(int32(c.CustomerType))
	f.WriteInt32(int32(c.Guests))
	f.WriteInt64(c.TimeOpen.Time().Unix())
	f.WriteInt64(c.TimeClosed.Time().Unix())
	f.WriteInt64(c.nextOrderID)

	if c.Customer != nil {
		f.WriteByte(1)
		f.WriteStr(c.Customer.Name)
		f.WriteStr(c.Customer.Phone)
	} else {
		f.WriteByte(0)
	}

	f.WriteInt32(int32(c.CurrentSub))
	f.WriteInt32(int32(len(c.SubChecks)))
	for _, sub := range c.SubChecks {
		writeSubCheck(f, sub)
	}
}

func writeSubCheck(f *persist.OutputDataFile, sub *SubCheck) {
	f.WriteInt32(int32(sub.Number))
	f.WriteInt32(int32(sub.Status))
	f.WriteInt64(int64(sub.Version))
	f.WriteInt64(sub.TimeClosed.Time().Unix())

	f.WriteInt32(int32(len(sub.Orders)))
	for _, o := range sub.Orders {
		writeOrder(f, o)
	}

	f.WriteInt32(int32(len(sub.Payments)))
	for _, p := range sub.Payments {
		writePayment(f, p)
	}

	writeTotals(f, sub.Totals)
}

func writeOrder(f *persist.OutputDataFile, o *Order) {
	f.WriteInt64(o.OrderID)
	f.WriteStr(o.ItemName)
	f.WriteInt32(int32(o.ItemType))
	f.WriteInt32(int32(o.ItemFamily))
	f.WriteInt32(int32(o.TaxCategory))
	f.WriteInt32(int32(o.Count))
	f.WriteFlt(o.Weight)
	f.WriteInt64(int64(o.ItemCost))
	f.WriteInt32(int32(o.Seat))
	f.WriteInt32(int32(o.Qualifier))
	f.WriteInt32(int32(o.PrinterID))
	f.WriteInt32(int32(o.Status))
	f.WriteInt64(o.ParentID)
}

func writePayment(f *persist.OutputDataFile, p *Payment) {
	f.WriteInt32(int32(p.TenderType))
	f.WriteInt32(int32(p.TenderID))
	f.WriteInt64(int64(p.Amount))
	f.WriteInt64(int64(p.Value))
	if p.Valid {
		f.WriteByte(1)
	} else {
		f.WriteByte(0)
	}
	if p.Credit != nil {
		f.WriteByte(1)
		writeCredit(f, p.Credit)
	} else {
		f.WriteByte(0)
	}
}

func writeCredit(f *persist.OutputDataFile, c *Credit) {
	f.WriteInt32(int32(c.Status))
	f.WriteStr(c.PAN)
	f.WriteStr(c.Expiry)
	f.WriteStr(c.HolderName)
	f.WriteInt32(int32(c.CardType))
	f.WriteInt64(int64(c.Amount))
	f.WriteInt64(int64(c.Tip))
	f.WriteStr(c.ApprovalCode)
	f.WriteStr(c.VoiceAuth)
	f.WriteInt64(c.PreauthTime.Time().Unix())
	f.WriteInt64(c.AuthTime.Time().Unix())
	f.WriteStr(c.TermID)
	f.WriteStr(c.BatchID)
	if c.finalized {
		f.WriteByte(1)
	} else {
		f.WriteByte(0)
	}

	f.WriteInt32(int32(len(c.ErrorChain)))
	for _, a := range c.ErrorChain {
		f.WriteInt64(a.At.Time().Unix())
		f.WriteStr(a.Verb)
		f.WriteStr(a.Code)
	}
}

func writeTotals(f *persist.OutputDataFile, t Totals) {
	for _, v := range []money.Money{
		t.Subtotal, t.TaxFood, t.TaxAlcohol, t.TaxGST, t.TaxPST, t.TaxHST,
		t.TaxQST, t.TaxVAT, t.RoomTax, t.MerchandiseTax, t.TotalCost,
		t.TotalTip, t.Balance,
	} {
		f.WriteInt64(int64(v))
	}
}

func readCheck(f *persist.InputDataFile) (*Check, error) {
	c := &Check{}
	c.SerialNumber = serial.Number(f.ReadInt32())
	c.Label = f.ReadStr()
	c.CustomerType = CustomerType(f.ReadInt32())
	c.Guests = int(f.ReadInt32())
	c.TimeOpen = timeinfo.New(time.Unix(f.ReadInt64(), 0))
	c.TimeClosed = timeinfo.New(time.Unix(f.ReadInt64(), 0))
	c.nextOrderID = f.ReadInt64()
	c.Filename = fmt.Sprintf("check_%d.dat", c.SerialNumber)

	if f.ReadByte() == 1 {
		c.Customer = &CustomerInfo{Name: f.ReadStr(), Phone: f.ReadStr()}
	}

	c.CurrentSub = int(f.ReadInt32())
	n := int(f.ReadInt32())
	c.SubChecks = make([]*SubCheck, 0, n)
	for i := 0; i < n; i++ {
		sub, err := readSubCheck(f)
		if err != nil {
			return nil, err
		}
		c.SubChecks = append(c.SubChecks, sub)
	}
	return c, f.Err()
}

func readSubCheck(f *persist.InputDataFile) (*SubCheck, error) {
	sub := &SubCheck{}
	sub.Number = int(f.ReadInt32())
	sub.Status = SubCheckStatus(f.ReadInt32())
	sub.Version = uint64(f.ReadInt64())
	sub.TimeClosed = timeinfo.New(time.Unix(f.ReadInt64(), 0))

	orderCount := int(f.ReadInt32())
	sub.Orders = make([]*Order, 0, orderCount)
	for i := 0; i < orderCount; i++ {
		sub.Orders = append(sub.Orders, readOrder(f))
	}

	paymentCount := int(f.ReadInt32())
	sub.Payments = make([]*Payment, 0, paymentCount)
	for i := 0; i < paymentCount; i++ {
		sub.Payments = append(sub.Payments, readPayment(f))
	}

	sub.Totals = readTotals(f)
	return sub, f.Err()
}

func readOrder(f *persist.InputDataFile) *Order {
	o := &Order{}
	o.OrderID = f.ReadInt64()
	o.ItemName = f.ReadStr()
	o.ItemType = ItemType(f.ReadInt32())
	o.ItemFamily = int(f.ReadInt32())
	o.TaxCategory = TaxCategory(f.ReadInt32())
	o.Count = int(f.ReadInt32())
	o.Weight = f.ReadFlt()
	o.ItemCost = money.Money(f.ReadInt64())
	o.Seat = int(f.ReadInt32())
	o.Qualifier = uint32(f.ReadInt32())
	o.PrinterID = int(f.ReadInt32())
	o.Status = OrderStatus(f.ReadInt32())
	o.ParentID = f.ReadInt64()
	return o
}

func readPayment(f *persist.InputDataFile) *Payment {
	p := &Payment{}
	p.TenderType = TenderType(f.ReadInt32())
	p.TenderID = int(f.ReadInt32())
	p.Amount = money.Money(f.ReadInt64())
	p.Value = money.Money(f.ReadInt64())
	p.Valid = f.ReadByte() == 1
	if f.ReadByte() == 1 {
		p.Credit = readCredit(f)
	}
	return p
}

func readCredit(f *persist.InputDataFile) *Credit {
	c := &Credit{}
	c.Status = CreditStatus(f.ReadInt32())
	c.PAN = f.ReadStr()
	c.Expiry = f.ReadStr()
	c.HolderName = f.ReadStr()
	c.CardType = int(f.ReadInt32())
	c.Amount = money.Money(f.ReadInt64())
	c.Tip = money.Money(f.ReadInt64())
	c.ApprovalCode = f.ReadStr()
	c.VoiceAuth = f.ReadStr()
	c.PreauthTime = timeinfo.New(time.Unix(f.ReadInt64(), 0))
	c.AuthTime = timeinfo.New(time.Unix(f.ReadInt64(), 0))
	c.TermID = f.ReadStr()
	c.BatchID = f.ReadStr()
	c.finalized = f.ReadByte() == 1

	n := int(f.ReadInt32())
	c.ErrorChain = make([]CreditAttempt, 0, n)
	for i := 0; i < n; i++ {
		at := timeinfo.New(time.Unix(f.ReadInt64(), 0))
		verb := f.ReadStr()
		code := f.ReadStr()
		c.ErrorChain = append(c.ErrorChain, CreditAttempt{At: at, Verb: verb, Code: code})
	}
	return c
}

func readTotals(f *persist.InputDataFile) Totals {
	vals := make([]money.Money, 13)
	for i := range vals {
		vals[i] = money.Money(f.ReadInt64())
	}
	return Totals{
		Subtotal:       vals[0],
		TaxFood:        vals[1],
		TaxAlcohol:     vals[2],
		TaxGST:         vals[3],
		TaxPST:         vals[4],
		TaxHST:         vals[5],
		TaxQST:         vals[6],
		TaxVAT:         vals[7],
		RoomTax:        vals[8],
		MerchandiseTax: vals[9],
		TotalCost:      vals[10],
		TotalTip:       vals[11],
		Balance:        vals[12],
	}
}
