package metadata

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nativeDoc = `{
  "tables": [
    {
      "name": "Customers",
      "id": "T1",
      "navigationPaths": ["Orders"],
      "fields": [
        {"name": "Customers::id", "type": "text", "primaryKey": true, "id": "F1"},
        {"name": "Customers::age", "type": "number", "id": "F2"}
      ]
    },
    {"name": "Empty", "fields": []}
  ]
}`

const edmxDoc = `<?xml version="1.0" encoding="UTF-8"?>
<edmx:Edmx Version="4.0" xmlns:edmx="http://docs.oasis-open.org/odata/ns/edmx">
  <edmx:DataServices>
    <Schema Namespace="FMDB" xmlns="http://docs.oasis-open.org/odata/ns/edm">
      <EntityType Name="Customers_">
        <Key><PropertyRef Name="id"/></Key>
        <Property Name="id" Type="Edm.String" Nullable="false">
          <Annotation Term="com.filemaker.odata.FieldID" String="F1"/>
        </Property>
        <Property Name="created" Type="Edm.DateTimeOffset" Precision="3">
          <Annotation Term="com.filemaker.odata.FieldID" String="F2"/>
          <Annotation Term="Org.OData.Core.V1.Computed" Bool="true"/>
        </Property>
        <Property Name="tags" Type="Collection(Edm.String)">
          <Annotation Term="Org.OData.Core.V1.Description" String="free tags"/>
        </Property>
        <Property Name="total" Type="Edm.Decimal">
          <Annotation Term="Org.OData.Core.V1.Permissions">
            <EnumMember>Org.OData.Core.V1.Permission/Read</EnumMember>
          </Annotation>
        </Property>
        <NavigationProperty Name="Orders" Type="Collection(FMDB.Orders_)"/>
        <Annotation Term="com.filemaker.odata.TableID" String="T1"/>
        <Annotation Term="Org.OData.Core.V1.Description" String="All customers"/>
      </EntityType>
      <EntityType Name="Orders_">
        <Property Name="id" Type="Edm.Int64"/>
      </EntityType>
      <EntityContainer Name="FMDB_Container">
        <EntitySet Name="Orders" EntityType="FMDB.Orders_"/>
        <EntitySet Name="Customers" EntityType="FMDB.Customers_">
          <NavigationPropertyBinding Path="Invoices" Target="Invoices"/>
        </EntitySet>
      </EntityContainer>
    </Schema>
  </edmx:DataServices>
</edmx:Edmx>`

const layoutDoc = `{
  "response": {
    "fieldMetaData": [
      {"name": "Contacts::name", "type": "normal", "result": "text", "notEmpty": true, "maxRepeat": 1},
      {"name": "full_name", "type": "calculation", "result": "text", "maxRepeat": 1},
      {"name": "phones", "type": "normal", "result": "text", "maxRepeat": 3},
      {"name": "birthday", "type": "normal", "result": "date", "maxRepeat": 1}
    ],
    "portalMetaData": {"Notes": [], "Addresses": []}
  },
  "messages": [{"code": "0", "message": "OK"}]
}`

func TestDecodeJSON(t *testing.T) {
	doc, err := DecodeJSON(strings.NewReader(nativeDoc))
	require.NoError(t, err)
	require.Len(t, doc.Tables, 2)

	customers := doc.Tables[0]
	assert.Equal(t, "Customers", customers.Name)
	assert.Equal(t, "T1", customers.ID)
	assert.Equal(t, []string{"Orders"}, customers.NavigationPaths)
	require.Len(t, customers.Fields, 2)
	assert.Equal(t, Field{Name: "Customers::id", Type: "text", PrimaryKey: true, ID: "F1"}, customers.Fields[0])
	assert.Equal(t, "Customers::age", customers.Fields[1].Name)

	assert.Empty(t, doc.Tables[1].Fields)
}

func TestDecodeJSONRejectsUnnamedTable(t *testing.T) {
	_, err := DecodeJSON(strings.NewReader(`{"tables":[{"fields":[]}]}`))
	assert.Error(t, err)

	_, err = DecodeJSON(strings.NewReader(`{"tables":[{"name":"A","fields":[{"type":"text"}]}]}`))
	assert.Error(t, err)
}

func TestDecodeEDMX(t *testing.T) {
	doc, err := DecodeEDMX(strings.NewReader(edmxDoc))
	require.NoError(t, err)

	assert.Equal(t, []string{"Orders", "Customers"}, doc.TableNames(), "entity sets keep container order")

	customers := doc.Tables[1]
	assert.Equal(t, "T1", customers.ID)
	assert.Equal(t, "All customers", customers.Comment)
	assert.ElementsMatch(t, []string{"Orders", "Invoices"}, customers.NavigationPaths)

	require.Len(t, customers.Fields, 4)

	id := customers.Fields[0]
	assert.Equal(t, "Edm.String", id.Type)
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.NotNull)
	assert.Equal(t, "F1", id.ID)

	created := customers.Fields[1]
	assert.Equal(t, "Edm.DateTimeOffset", created.Type)
	assert.True(t, created.ReadOnly)
	assert.False(t, created.NotNull)

	tags := customers.Fields[2]
	assert.Equal(t, "Collection(Edm.String)", tags.Type)
	assert.Equal(t, "free tags", tags.Comment)

	total := customers.Fields[3]
	assert.True(t, total.ReadOnly, "read-only permission marks the field read-only")
}

func TestDecodeEDMXWithoutContainer(t *testing.T) {
	doc, err := DecodeEDMX(strings.NewReader(`<Edmx><DataServices><Schema Namespace="X">
  <EntityType Name="A"><Property Name="x" Type="Edm.String"/></EntityType>
  <EntityType Name="B"/>
</Schema></DataServices></Edmx>`))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, doc.TableNames())
}

func TestDecodeEDMXUnknownEntityType(t *testing.T) {
	_, err := DecodeEDMX(strings.NewReader(`<Edmx><DataServices><Schema Namespace="X">
  <EntityContainer Name="C"><EntitySet Name="A" EntityType="X.Missing"/></EntityContainer>
</Schema></DataServices></Edmx>`))
	assert.Error(t, err)
}

func TestDecodeLayout(t *testing.T) {
	doc, err := DecodeLayout(strings.NewReader(layoutDoc), "Contacts")
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)

	table := doc.Tables[0]
	assert.Equal(t, "Contacts", table.Name)
	assert.Equal(t, []string{"Addresses", "Notes"}, table.NavigationPaths)
	require.Len(t, table.Fields, 4)

	assert.Equal(t, Field{Name: "Contacts::name", Type: "text", NotNull: true, Repetitions: 1}, table.Fields[0])
	assert.True(t, table.Fields[1].ReadOnly)
	assert.Equal(t, 3, table.Fields[2].Repetitions)
	assert.Equal(t, "date", table.Fields[3].Type)
}

func TestDecodeLayoutErrors(t *testing.T) {
	_, err := DecodeLayout(strings.NewReader(`{"messages":[{"code":"105","message":"Layout is missing"}]}`), "X")
	assert.ErrorContains(t, err, "105")

	_, err = DecodeLayout(strings.NewReader(layoutDoc), "")
	assert.Error(t, err)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		path string
		data string
		want Format
	}{
		{"metadata.xml", "", FormatEDMX},
		{"metadata.edmx", "", FormatEDMX},
		{"metadata", "  <Edmx/>", FormatEDMX},
		{"Contacts.json", layoutDoc, FormatLayout},
		{"Contacts.json", `{"fieldMetaData": []}`, FormatLayout},
		{"schema.json", nativeDoc, FormatJSON},
		{"schema.json", "not json", FormatJSON},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Detect(tt.path, []byte(tt.data)), tt.path)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatAuto, f)

	f, err = ParseFormat(" EDMX ")
	require.NoError(t, err)
	assert.Equal(t, FormatEDMX, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "meta/odata.xml", []byte(edmxDoc), 0644))
	require.NoError(t, afero.WriteFile(fsys, "meta/Contacts.json", []byte(layoutDoc), 0644))
	require.NoError(t, afero.WriteFile(fsys, "meta/schema.json", []byte(nativeDoc), 0644))

	doc, err := Load(fsys, "meta/odata.xml", FormatAuto)
	require.NoError(t, err)
	assert.Len(t, doc.Tables, 2)

	doc, err = Load(fsys, "meta/Contacts.json", FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, []string{"Contacts"}, doc.TableNames(), "layout table is named after the file")

	doc, err = Load(fsys, "meta/schema.json", FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"Customers", "Empty"}, doc.TableNames())

	_, err = Load(fsys, "meta/missing.json", FormatAuto)
	assert.ErrorContains(t, err, "meta/missing.json")
}

func TestDocumentFilterAndMerge(t *testing.T) {
	doc := &Document{Tables: []Table{{Name: "A"}, {Name: "B"}, {Name: "C"}}}

	filtered, missing := doc.Filter([]string{"C", "A", "Z"})
	assert.Equal(t, []string{"A", "C"}, filtered.TableNames(), "filter keeps source order")
	assert.Equal(t, []string{"Z"}, missing)

	all, missing := doc.Filter(nil)
	assert.Len(t, all.Tables, 3)
	assert.Empty(t, missing)

	doc.Merge(&Document{Tables: []Table{{Name: "D"}}})
	doc.Merge(nil)
	assert.Equal(t, []string{"A", "B", "C", "D"}, doc.TableNames())
}
