package testutil

import "github.com/Veraticus/market-basket/internal/model"

// Groceries is the five-basket grocery dataset used throughout the tests.
// At a minimum support of 3 it yields eight frequent item sets.
func Groceries() []model.Transaction {
	return []model.Transaction{
		model.NewTransaction("1", "dounai", "woju"),
		model.NewTransaction("2", "woju", "niaobu", "putaojiu", "tiancai"),
		model.NewTransaction("3", "dounai", "niaobu", "putaojiu", "chengzhi"),
		model.NewTransaction("4", "woju", "dounai", "niaobu", "putaojiu"),
		model.NewTransaction("5", "woju", "dounai", "niaobu", "chengzhi"),
	}
}

// GroceriesCSV is Groceries in the CSV import format.
const GroceriesCSV = `id,items
1,dounai;woju
2,woju;niaobu;putaojiu;tiancai
3,dounai;niaobu;putaojiu;chengzhi
4,woju;dounai;niaobu;putaojiu
5,woju;dounai;niaobu;chengzhi
`
