package models

// Counter backs atomically allocated sequences such as the catalog id.
// A derived max-plus-one query would race under concurrent creates; the
// counter row is bumped with a single upsert instead.
type Counter struct {
	Name  string `gorm:"column:name;primaryKey"`
	Value int64  `gorm:"column:value;not null;default:0"`
}

// CounterCatalogID names the sequence that hands out product catalog ids.
const CounterCatalogID = "product_catalog_id"
