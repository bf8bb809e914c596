package model_test

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"siphon/pkg/model"
)

type DrinkTestSuite struct {
	suite.Suite
}

func TestDrinkTestSuite(t *testing.T) {
	suite.Run(t, new(DrinkTestSuite))
}

func (suite *DrinkTestSuite) TestSummary_OmitsIngredientNames() {
	drink := model.Drink{Model: gorm.Model{ID: 7}, Title: "Flat White"}
	err := drink.SetIngredients([]model.Ingredient{
		{Name: "espresso", Color: "brown", Parts: 1},
		{Name: "steamed milk", Color: "white", Parts: 3},
	})
	suite.Require().NoError(err)

	summary, err := drink.Summary()
	suite.Require().NoError(err)
	suite.Equal(uint(7), summary.ID)
	suite.Equal("Flat White", summary.Title)
	suite.Equal([]model.SummaryIngredient{{Color: "brown", Parts: 1}, {Color: "white", Parts: 3}}, summary.Recipe)
}

func (suite *DrinkTestSuite) TestDetail_KeepsIngredientOrder() {
	drink := model.Drink{Model: gorm.Model{ID: 2}, Title: "Matcha Latte", Recipe: `[{"name":"matcha","color":"green","parts":1},{"name":"milk","color":"white","parts":3}]`}

	detail, err := drink.Detail()
	suite.Require().NoError(err)
	suite.Equal("Matcha Latte", detail.Title)
	suite.Require().Len(detail.Recipe, 2)
	suite.Equal("matcha", detail.Recipe[0].Name)
	suite.Equal("milk", detail.Recipe[1].Name)
}

func (suite *DrinkTestSuite) TestSummary_CorruptBlobReturnsError() {
	drink := model.Drink{Model: gorm.Model{ID: 3}, Title: "Broken", Recipe: "not json"}

	summary, err := drink.Summary()
	suite.Error(err)
	suite.Nil(summary)

	detail, err := drink.Detail()
	suite.Error(err)
	suite.Nil(detail)
}
