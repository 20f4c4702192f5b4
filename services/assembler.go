package services

import (
	"github.com/yashrajoria/lezzetli-admin/models"
)

// AssembleOrder builds the view of an order from the order document and its
// resolved references. It performs no I/O and depends only on its inputs.
func AssembleOrder(base models.Document, res Resolved) (models.OrderView, error) {
	var view models.OrderView
	if err := decode(base, &view.Order); err != nil {
		return models.OrderView{}, err
	}
	if view.Order.ID == "" {
		view.Order.ID = base.ID()
	}

	if doc := res.One["companyId"]; doc != nil {
		var c models.Company
		if err := decode(doc, &c); err != nil {
			return models.OrderView{}, err
		}
		view.Company = &c
	}
	if doc := res.One["userId"]; doc != nil {
		var u models.User
		if err := decode(doc, &u); err != nil {
			return models.OrderView{}, err
		}
		view.User = &u
	}
	if doc := res.One["menuId"]; doc != nil {
		var m models.Menu
		if err := decode(doc, &m); err != nil {
			return models.OrderView{}, err
		}
		view.Menu = &m
	}

	view.Items = make([]models.OrderItemView, 0, len(res.Many["items"]))
	for _, el := range res.Many["items"] {
		var item models.OrderItemView
		if err := decode(el.Doc, &item.MenuItem); err != nil {
			return models.OrderView{}, err
		}
		item.Quantity = toInt(el.Element["quantity"])
		view.Items = append(view.Items, item)
	}
	return view, nil
}
