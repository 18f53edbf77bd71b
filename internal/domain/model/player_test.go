package model_test

import (
	"testing"

	model "github.com/okian/hoopmatch/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestRawTable(t *testing.T) {
	convey.Convey("Given a raw table", t, func() {
		raw := &model.RawTable{
			Columns: []model.Column{
				{Name: "player", Kind: model.KindIdentity},
				{Name: "pts", Kind: model.KindNumeric},
			},
		}

		convey.Convey("Then HasColumn should match header names exactly", func() {
			convey.So(raw.HasColumn("player"), convey.ShouldBeTrue)
			convey.So(raw.HasColumn("pts"), convey.ShouldBeTrue)
			convey.So(raw.HasColumn("pos"), convey.ShouldBeFalse)
			convey.So(raw.HasColumn("PTS"), convey.ShouldBeFalse)
		})

		convey.Convey("And a nil table should have no columns", func() {
			var empty *model.RawTable
			convey.So(empty.HasColumn("player"), convey.ShouldBeFalse)
		})
	})
}

func TestNormalizedTableLookup(t *testing.T) {
	convey.Convey("Given a normalized table with a repeated name", t, func() {
		table := &model.NormalizedTable{
			Columns: []model.ColumnStats{{Name: "pts"}, {Name: "ast"}},
			Records: []model.NormalizedRecord{
				{Row: 0, Player: "A", Pos: "G", CareerScore: 1},
				{Row: 1, Player: "B", Pos: "F", CareerScore: 2},
				{Row: 2, Player: "A", Pos: "C", CareerScore: 3},
			},
		}

		convey.Convey("When looking up a player", func() {
			rec, ok := table.Lookup("A")

			convey.Convey("Then the first match should be returned", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(rec.Row, convey.ShouldEqual, 0)
				convey.So(rec.Pos, convey.ShouldEqual, "G")
			})
		})

		convey.Convey("When looking up with a different case", func() {
			_, ok := table.Lookup("b")

			convey.Convey("Then nothing should match", func() {
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("Then it should report its size and columns", func() {
			convey.So(table.Len(), convey.ShouldEqual, 3)
			convey.So(table.ColumnNames(), convey.ShouldResemble, []string{"pts", "ast"})
		})
	})
}
