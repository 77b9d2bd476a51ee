// Package xmldoc serializa la orden de compra como documento UBL 2.1 Order y calcula el digest
// SHA-256 de su forma canónica (C14N 1.0) para que el receptor verifique la integridad.
package xmldoc

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/gestion-compras/internal/application/report"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
)

// Namespaces UBL 2.1 para el documento Order.
const (
	NsOrder = "urn:oasis:names:specification:ubl:schema:xsd:Order-2"
	NsCac   = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc   = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"

	ublVersion   = "2.1"
	currencyCode = "COP"
)

var _ report.OrderXMLBuilder = (*OrderXMLBuilder)(nil)

// OrderXMLBuilder construye el XML con etree.
type OrderXMLBuilder struct {
	buyer string
}

// NewOrderXMLBuilder crea el builder. buyer es el nombre de la parte compradora.
func NewOrderXMLBuilder(buyer string) *OrderXMLBuilder {
	if buyer == "" {
		buyer = "Gestión de Compras"
	}
	return &OrderXMLBuilder{buyer: buyer}
}

// BuildOrderXML devuelve el documento indentado y el digest hex de su forma canónica compacta.
func (b *OrderXMLBuilder) BuildOrderXML(_ context.Context, doc *report.OrderDocument) ([]byte, string, error) {
	if doc == nil || doc.Order == nil {
		return nil, "", fmt.Errorf("xmldoc: documento vacío")
	}
	root := b.orderElement(doc)

	// Digest sobre la forma compacta; la indentación agrega nodos de texto.
	compact := etree.NewDocument()
	compact.SetRoot(root.Copy())
	raw, err := compact.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("xmldoc: serializar: %w", err)
	}
	digest, err := Digest(raw)
	if err != nil {
		return nil, "", err
	}

	out := etree.NewDocument()
	out.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	out.SetRoot(root)
	out.Indent(2)
	body, err := out.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("xmldoc: serializar: %w", err)
	}
	return body, digest, nil
}

func (b *OrderXMLBuilder) orderElement(doc *report.OrderDocument) *etree.Element {
	o := doc.Order
	root := etree.NewElement("Order")
	root.CreateAttr("xmlns", NsOrder)
	root.CreateAttr("xmlns:cac", NsCac)
	root.CreateAttr("xmlns:cbc", NsCbc)

	cbc(root, "UBLVersionID", ublVersion)
	cbc(root, "ID", strconv.FormatInt(o.ID, 10))
	cbc(root, "IssueDate", o.CreatedAt.UTC().Format("2006-01-02"))
	cbc(root, "IssueTime", o.CreatedAt.UTC().Format("15:04:05Z"))
	if o.State != "" {
		cbc(root, "Note", "Estado: "+string(o.State))
	}
	cbc(root, "DocumentCurrencyCode", currencyCode)

	quote := root.CreateElement("cac:QuotationDocumentReference")
	cbc(quote, "ID", strconv.FormatInt(o.QuotationID, 10))
	origin := root.CreateElement("cac:OriginatorDocumentReference")
	cbc(origin, "ID", strconv.FormatInt(o.RequestID, 10))

	buyer := root.CreateElement("cac:BuyerCustomerParty").CreateElement("cac:Party")
	buyer.CreateElement("cac:PartyName").CreateElement("cbc:Name").SetText(b.buyer)
	if o.RequesterName != "" {
		buyer.CreateElement("cac:Contact").CreateElement("cbc:Name").SetText(o.RequesterName)
	}

	seller := root.CreateElement("cac:SellerSupplierParty")
	cbc(seller, "CustomerAssignedAccountID", strconv.FormatInt(o.SupplierID, 10))
	party := seller.CreateElement("cac:Party")
	name := o.SupplierName
	if doc.Supplier != nil && doc.Supplier.Name != "" {
		name = doc.Supplier.Name
	}
	party.CreateElement("cac:PartyName").CreateElement("cbc:Name").SetText(name)
	if doc.Supplier != nil && (doc.Supplier.Email != "" || doc.Supplier.Phone != "") {
		contact := party.CreateElement("cac:Contact")
		if doc.Supplier.Phone != "" {
			cbc(contact, "Telephone", doc.Supplier.Phone)
		}
		if doc.Supplier.Email != "" {
			cbc(contact, "ElectronicMail", doc.Supplier.Email)
		}
	}

	total := root.CreateElement("cac:AnticipatedMonetaryTotal")
	amount(total, "LineExtensionAmount", o.Total.StringFixed(2))
	amount(total, "PayableAmount", o.Total.StringFixed(2))

	line := root.CreateElement("cac:OrderLine").CreateElement("cac:LineItem")
	cbc(line, "ID", "1")
	qty := cbc(line, "Quantity", strconv.Itoa(o.Quantity))
	qty.CreateAttr("unitCode", "NIU")
	amount(line, "LineExtensionAmount", o.Total.StringFixed(2))
	if len(o.Tracking) > 0 {
		last := o.Tracking[len(o.Tracking)-1]
		delivery := line.CreateElement("cac:Delivery")
		cbc(delivery, "ID", string(last.Status))
		if last.Status == entity.DispatchEntregado {
			cbc(delivery, "ActualDeliveryDate", last.OccurredAt.UTC().Format("2006-01-02"))
		}
	}
	price := line.CreateElement("cac:Price")
	amount(price, "PriceAmount", o.Price.StringFixed(2))
	item := line.CreateElement("cac:Item")
	cbc(item, "Name", o.ProductName)
	item.CreateElement("cac:SellersItemIdentification").CreateElement("cbc:ID").SetText(strconv.FormatInt(o.ProductID, 10))

	return root
}

func cbc(parent *etree.Element, local, value string) *etree.Element {
	el := parent.CreateElement("cbc:" + local)
	el.SetText(value)
	return el
}

func amount(parent *etree.Element, local, value string) {
	cbc(parent, local, value).CreateAttr("currencyID", currencyCode)
}

// Digest SHA-256 (hex) de la forma canónica C14N de data.
func Digest(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("xmldoc: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
