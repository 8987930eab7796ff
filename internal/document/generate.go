// SPDX-License-Identifier: MPL-2.0

package document

import (
	"encoding/xml"
	"fmt"

	"github.com/google/uuid"

	"kenshin-cli/internal/rule"
)

// fieldMap gives the generators terse access to a record's scalar fields.
type fieldMap map[string]string

func (f fieldMap) get(key string) string { return f[key] }

func (f fieldMap) getOr(key, fallback string) string {
	if v, ok := f[key]; ok && v != "" {
		return v
	}
	return fallback
}

// iiFor builds an instance identifier from the <prefix>RootOid and
// <prefix>Extension fields, nil when neither is set.
func (f fieldMap) iiFor(prefix string) *ii {
	root, ext := f.get(prefix+"RootOid"), f.get(prefix+"Extension")
	if root == "" && ext == "" {
		return nil
	}
	return &ii{Root: root, Extension: ext}
}

// cdFor builds a coded value from the <prefix>Code triple, nil when no
// code is set.
func (f fieldMap) cdFor(prefix string) *cd {
	if f.get(prefix+"Code") == "" {
		return nil
	}
	return &cd{
		Code:        f.get(prefix + "Code"),
		CodeSystem:  f.get(prefix + "CodeSystem"),
		DisplayName: f.get(prefix + "DisplayName"),
	}
}

// valFor builds a value element from <prefix>Value, nil when absent.
func (f fieldMap) valFor(prefix string) *valueAttr {
	v := f.get(prefix + "Value")
	if v == "" {
		return nil
	}
	return &valueAttr{Value: v}
}

// moFor builds a monetary element from <prefix>Value and <prefix>Currency,
// defaulting the currency to JPY.
func (f fieldMap) moFor(prefix string) *mo {
	v := f.get(prefix + "Value")
	if v == "" {
		return nil
	}
	return &mo{Value: v, Currency: f.getOr(prefix+"Currency", "JPY")}
}

// Generate renders one document of the given kind from a record's fields
// and sequences.
func Generate(kind Kind, fields map[string]string, seqs map[string]rule.Sequence) ([]byte, error) {
	f := fieldMap(fields)
	switch kind {
	case HC08:
		return marshal(buildHealthCheckup(f, seqs["examinationResults"]))
	case HG08:
		return marshal(buildHealthGuidance(f, seqs["guidanceResults"]))
	case CC08:
		return marshal(buildCheckupClaim(f))
	case GC08:
		return marshal(buildGuidanceClaim(f))
	case Index:
		return marshal(buildIndex(f))
	case Summary:
		return marshal(buildSummary(f))
	}
	return nil, fmt.Errorf("unknown document kind %q", kind)
}

// DocumentID returns the record's document identifier, minting one when the
// rules produced none so that file names stay unique.
func DocumentID(fields map[string]string) string {
	if id := fields["documentIdExtension"]; id != "" {
		return id
	}
	return uuid.NewString()
}

// FileName names a generated per-record file by kind prefix and document id.
func FileName(kind Kind, docID string) string {
	return kind.FilePrefix() + docID + ".xml"
}

func marshal(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

func buildIndex(f fieldMap) *indexDoc {
	return &indexDoc{
		Xmlns:            NamespaceMHLW,
		XmlnsXSI:         NamespaceXSI,
		SchemaLocation:   NamespaceMHLW + " " + Index.SchemaName(),
		InteractionType:  codeAttr{Code: f.getOr("interactionType", "1")},
		CreationTime:     valueAttr{Value: f.get("creationTime")},
		Sender:           idWrap{ID: f.iiFor("senderId")},
		Receiver:         idWrap{ID: f.iiFor("receiverId")},
		ServiceEventType: codeAttr{Code: f.getOr("serviceEventType", "1")},
		TotalRecordCount: valueAttr{Value: f.getOr("totalRecordCount", "0")},
	}
}

func buildSummary(f fieldMap) *summaryDoc {
	doc := &summaryDoc{
		Xmlns:                      NamespaceMHLW,
		XmlnsXSI:                   NamespaceXSI,
		SchemaLocation:             NamespaceMHLW + " " + Summary.SchemaName(),
		TotalSubjectCount:          f.valFor("totalSubjectCount"),
		TotalCostAmount:            f.moFor("totalCostAmount"),
		TotalPaymentAmount:         f.moFor("totalPaymentAmount"),
		TotalClaimAmount:           f.moFor("totalClaimAmount"),
		TotalPaymentByOtherProgram: f.moFor("totalPaymentByOtherProgram"),
	}
	if code := f.get("serviceEventTypeCode"); code != "" {
		doc.ServiceEventType = &codeAttr{Code: code}
	}
	return doc
}

// cdaHeader fills the parts of the ClinicalDocument shared by both CDA
// kinds.
func cdaHeader(f fieldMap, schemaName string) *clinicalDocument {
	role := patientRole{
		Patient: patient{
			Name: patientName{
				Family: f.get("patientNameFamily"),
				Given:  f.get("patientNameGiven"),
			},
			AdministrativeGenderCode: f.cdFor("patientGender"),
			BirthTime:                valueAttr{Value: f.get("patientBirthTimeValue")},
		},
	}
	if id := f.iiFor("patientIdMrn"); id != nil {
		role.IDs = append(role.IDs, *id)
	}
	if id := f.iiFor("patientIdInsuranceNo"); id != nil {
		role.IDs = append(role.IDs, *id)
	}

	return &clinicalDocument{
		Xmlns:               NamespaceHL7,
		XmlnsXSI:            NamespaceXSI,
		XmlnsDT:             NamespaceMHLW,
		SchemaLocation:      NamespaceHL7 + " " + schemaName + " " + NamespaceMHLW + " " + CoreDatatypesSchema,
		TypeID:              f.iiFor("typeId"),
		ID:                  f.iiFor("documentId"),
		Code:                f.cdFor("documentType"),
		Title:               f.get("documentTitle"),
		EffectiveTime:       valueAttr{Value: f.get("documentEffectiveTime")},
		ConfidentialityCode: f.cdFor("confidentiality"),
		LanguageCode:        codeAttr{Code: f.getOr("languageCode", "ja-JP")},
		RecordTarget:        recordTarget{PatientRole: role},
		Author:              author{AssignedAuthor: idWrap{ID: f.iiFor("authorId")}},
		Custodian: custodian{AssignedCustodian: assignedCustodian{
			RepresentedCustodianOrganization: idWrap{ID: f.iiFor("custodianId")},
		}},
	}
}

// observationEntries turns accumulated sub-records into section entries.
// Each sub-record declares its value type through the valueType field,
// defaulting to a physical quantity.
func observationEntries(seq rule.Sequence) []entry {
	entries := make([]entry, 0, len(seq))
	for _, sub := range seq {
		obs := observation{
			ClassCode: "OBS",
			MoodCode:  "EVN",
		}
		if sub["code"] != "" {
			obs.Code = &cd{Code: sub["code"], CodeSystem: sub["codeSystem"], DisplayName: sub["displayName"]}
		}
		switch sub["valueType"] {
		case "CD":
			obs.Value = &obsValue{
				XSIType:     "dt:CD",
				Code:        sub["valueCode"],
				CodeSystem:  sub["valueCodeSystem"],
				DisplayName: sub["valueDisplayName"],
			}
		case "INT":
			obs.Value = &obsValue{XSIType: "dt:INT", Value: sub["value"]}
		default:
			if sub["value"] != "" {
				obs.Value = &obsValue{XSIType: "dt:PQ", Value: sub["value"], Unit: sub["unit"]}
			}
		}
		entries = append(entries, entry{TypeCode: "DRIV", Observation: obs})
	}
	return entries
}

func buildHealthCheckup(f fieldMap, results rule.Sequence) *clinicalDocument {
	doc := cdaHeader(f, HC08.SchemaName())
	doc.Component = bodyComponent{
		TypeCode: "COMP",
		StructuredBody: structuredBody{Component: sectionComponent{Section: section{
			Code:    f.cdFor("sectionResults"),
			Title:   f.getOr("sectionResultsTitle", "検査結果"),
			Text:    f.getOr("sectionResultsText", "特定健診の検査結果を以下に示す。"),
			Entries: observationEntries(results),
		}}},
	}
	return doc
}

func buildHealthGuidance(f fieldMap, results rule.Sequence) *clinicalDocument {
	doc := cdaHeader(f, HG08.SchemaName())

	low, high := f.get("serviceEventEffectiveTimeLow"), f.get("serviceEventEffectiveTimeHigh")
	if low != "" || high != "" {
		t := serviceEventTime{}
		if low == high {
			t.Value = low
		} else {
			if low != "" {
				t.Low = &valueAttr{Value: low}
			}
			if high != "" {
				t.High = &valueAttr{Value: high}
			}
		}
		doc.DocumentationOf = &documentationOf{ServiceEvent: serviceEvent{EffectiveTime: t}}
	}

	doc.Component = bodyComponent{
		TypeCode: "COMP",
		StructuredBody: structuredBody{Component: sectionComponent{Section: section{
			Code:    f.cdFor("sectionInitialInterview"),
			Title:   f.getOr("sectionInitialInterviewTitle", "初回面接情報"),
			Entries: observationEntries(results),
		}}},
	}
	return doc
}

func buildCheckupClaim(f fieldMap) *checkupClaim {
	doc := &checkupClaim{
		Xmlns:          NamespaceMHLW,
		XmlnsXSI:       NamespaceXSI,
		SchemaLocation: NamespaceMHLW + " " + CC08.SchemaName(),
		DocID:          f.get("documentIdExtension"),
		Encounter:      f.getOr("encounterDetails", "Checkup Encounter"),
		SubjectPerson: subjectPerson{
			PatientID:    f.iiFor("patientIdMrn"),
			CheckupOrgID: f.iiFor("checkupOrgId"),
			InsurerID:    f.iiFor("insurerId"),
		},
		Settlement: checkupSettlement{
			ClaimType:       f.cdFor("claimType"),
			CommissionType:  f.cdFor("commissionType"),
			TotalPoints:     f.valFor("totalPoints"),
			TotalCost:       f.valFor("totalCost"),
			CopaymentAmount: f.valFor("copaymentAmount"),
			ClaimAmount:     f.valFor("claimAmount"),
		},
	}
	if copay := f.cdFor("copaymentType"); copay != nil {
		doc.CheckupCard = &checkupCard{CopaymentType: copay}
	}
	return doc
}

func buildGuidanceClaim(f fieldMap) *guidanceClaim {
	return &guidanceClaim{
		Xmlns:             NamespaceGuidanceClaim,
		XmlnsXSI:          NamespaceXSI,
		XmlnsDT:           NamespaceMHLWDatatype,
		SchemaLocation:    NamespaceGuidanceClaim + " " + GC08.SchemaName() + " " + NamespaceMHLWDatatype + " datatypes_hcgv08.xsd",
		DocumentID:        f.iiFor("documentId"),
		CreationTime:      valueAttr{Value: f.get("creationTimeValue")},
		AuthorInstitution: idWrapDT{ID: f.iiFor("guidanceOrgId")},
		Patient:           idWrap{ID: f.iiFor("patientIdMrn")},
		HealthInsurance:   healthInsurance{Insurer: idWrapDT{ID: f.iiFor("insurerId")}},
		Encounter: guidanceEncounter{
			GuidanceOrg:   idWrapDT{ID: f.iiFor("guidanceOrgId")},
			GuidanceLevel: f.cdFor("guidanceLevel"),
			Timing:        f.cdFor("timing"),
		},
		Card: guidanceCard{
			CopaymentType:   f.cdFor("copaymentType"),
			PointsCompleted: valueAttr{Value: f.getOr("pointsCompletedValue", "0")},
			PointsIntended:  f.valFor("pointsIntended"),
		},
		SettlementDetails: settlementDetails{
			TotalCost:       f.moFor("totalCost"),
			CopaymentAmount: f.moFor("copaymentAmount"),
			ClaimAmount:     f.moFor("claimAmount"),
		},
	}
}
