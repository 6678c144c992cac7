// internal/catalog/static.go
package catalog

import "card-advisor/internal/domain"

// staticCards is served whenever the store cannot answer.
var staticCards = []domain.CardRecord{
	{
		ID: 1, Name: "HDFC Diners Club Black", Issuer: "HDFC Bank",
		JoiningFee: 10000, AnnualFee: 10000,
		RewardType: domain.RewardPoints, RewardRate: "5-10%",
		MinIncome: 1800000, MinCreditScore: 750,
		SpecialPerks: domain.TagList{"Airport lounge access", "Golf privileges"},
		Categories:   domain.TagList{"travel", "dining"},
		ApplyLink:    "https://www.hdfcbank.com/", CardImage: "hdfc_diners_black.jpg",
	},
	{
		ID: 2, Name: "SBI Card PRIME", Issuer: "SBI Card",
		JoiningFee: 2999, AnnualFee: 2999,
		RewardType: domain.RewardPoints, RewardRate: "2-5%",
		MinIncome: 600000, MinCreditScore: 700,
		SpecialPerks: domain.TagList{"Fuel surcharge waiver", "Movie ticket discounts"},
		Categories:   domain.TagList{"fuel", "entertainment"},
		ApplyLink:    "https://www.sbicard.com/", CardImage: "sbi_prime.jpg",
	},
	{
		ID: 3, Name: "ICICI Amazon Pay Credit Card", Issuer: "ICICI Bank",
		JoiningFee: 0, AnnualFee: 0,
		RewardType: domain.RewardCashback, RewardRate: "1-5%",
		MinIncome: 300000, MinCreditScore: 650,
		SpecialPerks: domain.TagList{"Amazon Prime membership", "No-cost EMI"},
		Categories:   domain.TagList{"shopping", "bills"},
		ApplyLink:    "https://www.icicibank.com/", CardImage: "icici_amazon.jpg",
	},
	{
		ID: 4, Name: "Axis Bank Flipkart Credit Card", Issuer: "Axis Bank",
		JoiningFee: 500, AnnualFee: 500,
		RewardType: domain.RewardCashback, RewardRate: "1.5-5%",
		MinIncome: 250000, MinCreditScore: 650,
		SpecialPerks: domain.TagList{"Flipkart vouchers", "Welcome points"},
		Categories:   domain.TagList{"shopping", "groceries"},
		ApplyLink:    "https://www.axisbank.com/", CardImage: "axis_flipkart.jpg",
	},
	{
		ID: 5, Name: "Standard Chartered Manhattan Card", Issuer: "Standard Chartered",
		JoiningFee: 999, AnnualFee: 999,
		RewardType: domain.RewardCashback, RewardRate: "1-3%",
		MinIncome: 180000, MinCreditScore: 600,
		SpecialPerks: domain.TagList{"Dining discounts", "Movie offers"},
		Categories:   domain.TagList{"dining", "entertainment"},
		ApplyLink:    "https://www.sc.com/in/", CardImage: "sc_manhattan.jpg",
	},
	{
		ID: 6, Name: "Citi PremierMiles Card", Issuer: "Citibank",
		JoiningFee: 3000, AnnualFee: 3000,
		RewardType: domain.RewardPoints, RewardRate: "4-10 miles per ₹100",
		MinIncome: 750000, MinCreditScore: 720,
		SpecialPerks: domain.TagList{"Complimentary lounge access", "Travel insurance"},
		Categories:   domain.TagList{"travel", "international"},
		ApplyLink:    "https://www.citibank.co.in/", CardImage: "citi_premiermiles.jpg",
	},
	{
		ID: 7, Name: "HSBC Visa Platinum Card", Issuer: "HSBC",
		JoiningFee: 1000, AnnualFee: 1000,
		RewardType: domain.RewardPoints, RewardRate: "2 points per ₹100",
		MinIncome: 500000, MinCreditScore: 680,
		SpecialPerks: domain.TagList{"Fuel surcharge waiver", "Extended warranty"},
		Categories:   domain.TagList{"fuel", "shopping"},
		ApplyLink:    "https://www.hsbc.co.in/", CardImage: "hsbc_platinum.jpg",
	},
	{
		ID: 8, Name: "Kotak Urbane Card", Issuer: "Kotak Mahindra Bank",
		JoiningFee: 700, AnnualFee: 700,
		RewardType: domain.RewardCashback, RewardRate: "1-2%",
		MinIncome: 300000, MinCreditScore: 650,
		SpecialPerks: domain.TagList{"1+1 movie tickets", "Dining discounts"},
		Categories:   domain.TagList{"entertainment", "dining"},
		ApplyLink:    "https://www.kotak.com/", CardImage: "kotak_urbane.jpg",
	},
}

// seedCards is what a fresh store is populated with. IDs are assigned by the store.
var seedCards = []domain.CardRecord{
	{
		Name: "HDFC Regalia Gold", Issuer: "HDFC Bank",
		JoiningFee: 2500, AnnualFee: 2500,
		RewardType: domain.RewardPoints, RewardRate: "4 points per Rs. 150",
		MinIncome: 600000, MinCreditScore: 750,
		SpecialPerks: domain.TagList{"Airport lounge access", "Concierge services", "Dining privileges", "Travel insurance", "Golf program"},
		Categories:   domain.TagList{"travel", "dining", "premium"},
		ApplyLink:    "https://www.hdfcbank.com/regalia-gold", CardImage: "/images/regalia-gold.png",
	},
	{
		Name: "SBI SimplyClick", Issuer: "SBI Card",
		JoiningFee: 499, AnnualFee: 499,
		RewardType: domain.RewardCashback, RewardRate: "5% on online spending",
		MinIncome: 200000, MinCreditScore: 700,
		SpecialPerks: domain.TagList{"Online shopping rewards", "Movie ticket discounts", "Fuel surcharge waiver", "Welcome benefits"},
		Categories:   domain.TagList{"online", "entertainment"},
		ApplyLink:    "https://www.sbicard.com/simplyclick", CardImage: "/images/simplyclick.png",
	},
	{
		Name: "ICICI Amazon Pay", Issuer: "ICICI Bank",
		JoiningFee: 0, AnnualFee: 500,
		RewardType: domain.RewardCashback, RewardRate: "5% on Amazon, 2% others",
		MinIncome: 300000, MinCreditScore: 700,
		SpecialPerks: domain.TagList{"Amazon Prime benefits", "Fuel surcharge waiver", "No joining fee", "Welcome benefits"},
		Categories:   domain.TagList{"online", "fuel"},
		ApplyLink:    "https://www.icicibank.com/amazon-pay", CardImage: "/images/amazon-pay.png",
	},
	{
		Name: "Axis Magnus", Issuer: "Axis Bank",
		JoiningFee: 12500, AnnualFee: 12500,
		RewardType: domain.RewardPoints, RewardRate: "12 Edge Miles per Rs. 200",
		MinIncome: 1500000, MinCreditScore: 750,
		SpecialPerks: domain.TagList{"Golf privileges", "Airport transfers", "Priority Pass", "Concierge services", "Travel insurance"},
		Categories:   domain.TagList{"travel", "premium"},
		ApplyLink:    "https://www.axisbank.com/magnus", CardImage: "/images/magnus.png",
	},
	{
		Name: "Kotak 811", Issuer: "Kotak Bank",
		JoiningFee: 0, AnnualFee: 0,
		RewardType: domain.RewardCashback, RewardRate: "1% on all spends",
		MinIncome: 150000, MinCreditScore: 650,
		SpecialPerks: domain.TagList{"Zero annual fee", "Fuel surcharge waiver", "Welcome benefits"},
		Categories:   domain.TagList{"basic", "fuel"},
		ApplyLink:    "https://www.kotak.com/811", CardImage: "/images/kotak-811.png",
	},
	{
		Name: "HDFC MoneyBack", Issuer: "HDFC Bank",
		JoiningFee: 500, AnnualFee: 500,
		RewardType: domain.RewardCashback, RewardRate: "2% on groceries, fuel",
		MinIncome: 250000, MinCreditScore: 700,
		SpecialPerks: domain.TagList{"Grocery cashback", "Fuel rewards", "Welcome benefits"},
		Categories:   domain.TagList{"groceries", "fuel"},
		ApplyLink:    "https://www.hdfcbank.com/moneyback", CardImage: "/images/moneyback.png",
	},
	{
		Name: "ICICI Coral", Issuer: "ICICI Bank",
		JoiningFee: 500, AnnualFee: 500,
		RewardType: domain.RewardPoints, RewardRate: "2 points per Rs. 100",
		MinIncome: 300000, MinCreditScore: 700,
		SpecialPerks: domain.TagList{"Movie tickets", "Dining offers", "Welcome benefits"},
		Categories:   domain.TagList{"entertainment", "dining"},
		ApplyLink:    "https://www.icicibank.com/coral", CardImage: "/images/coral.png",
	},
	{
		Name: "SBI Prime", Issuer: "SBI Card",
		JoiningFee: 2999, AnnualFee: 2999,
		RewardType: domain.RewardPoints, RewardRate: "5 points per Rs. 100 on travel",
		MinIncome: 500000, MinCreditScore: 750,
		SpecialPerks: domain.TagList{"Travel insurance", "Lounge access", "Concierge services", "Welcome benefits"},
		Categories:   domain.TagList{"travel"},
		ApplyLink:    "https://www.sbicard.com/prime", CardImage: "/images/prime.png",
	},
	{
		Name: "Amex Platinum", Issuer: "American Express",
		JoiningFee: 60000, AnnualFee: 60000,
		RewardType: domain.RewardPoints, RewardRate: "5 Membership Rewards per Rs. 100",
		MinIncome: 2000000, MinCreditScore: 800,
		SpecialPerks: domain.TagList{"Airport lounge access", "Hotel status upgrades", "Concierge services", "Travel insurance", "Golf program"},
		Categories:   domain.TagList{"travel", "premium", "luxury"},
		ApplyLink:    "https://www.americanexpress.com/platinum", CardImage: "/images/platinum.png",
	},
	{
		Name: "Citi Prestige", Issuer: "Citi Bank",
		JoiningFee: 15000, AnnualFee: 15000,
		RewardType: domain.RewardPoints, RewardRate: "4 ThankYou points per Rs. 100",
		MinIncome: 1200000, MinCreditScore: 750,
		SpecialPerks: domain.TagList{"Airport lounge access", "Hotel status upgrades", "Concierge services", "Travel insurance", "Golf program"},
		Categories:   domain.TagList{"travel", "premium"},
		ApplyLink:    "https://www.citibank.com/prestige", CardImage: "/images/prestige.png",
	},
}

// Static returns a copy of the fallback dataset.
func Static() []domain.CardRecord {
	return cloneAll(staticCards)
}

// Seed returns a copy of the dataset used to populate an empty store.
func Seed() []domain.CardRecord {
	return cloneAll(seedCards)
}

// StaticByID looks a card up in the fallback dataset.
func StaticByID(id int) (domain.CardRecord, bool) {
	for _, c := range staticCards {
		if c.ID == id {
			return clone(c), true
		}
	}
	return domain.CardRecord{}, false
}

func cloneAll(in []domain.CardRecord) []domain.CardRecord {
	out := make([]domain.CardRecord, len(in))
	for i, c := range in {
		out[i] = clone(c)
	}
	return out
}

func clone(c domain.CardRecord) domain.CardRecord {
	c.SpecialPerks = append(domain.TagList{}, c.SpecialPerks...)
	c.Categories = append(domain.TagList{}, c.Categories...)
	return c
}
