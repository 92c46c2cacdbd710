package tables

// Default returns the production vocabulary set. The content is the
// working subset of each master actually reachable from generated
// messages, not the full published tables.
func Default() *Tables {
	return &Tables{
		Sex: Table{
			"F": "女",
			"M": "男",
			"O": "その他",
			"U": "不明",
			"A": "両性",
			"N": "適用外",
		},
		EventType: Table{
			"A01": "入院通知",
			"A02": "転科・転棟通知",
			"A03": "退院通知",
			"A04": "外来受診通知",
			"A08": "患者情報更新通知",
			"A12": "転科・転棟取消通知",
			"A14": "入院予定通知",
			"A15": "転科・転棟予定通知",
			"A16": "退院予定通知",
			"A21": "外出泊実施通知",
			"A22": "外出泊帰院実施通知",
			"A25": "退院予定取消通知",
			"A26": "外出泊帰院予定取消通知",
			"A27": "入院予定取消通知",
			"A52": "外出泊予定通知",
			"A53": "外出泊帰院予定通知",
			"A54": "担当医変更通知",
			"A60": "アレルギー情報通知",
			"O03": "食事オーダ",
			"O11": "処方オーダ",
			"O17": "与薬実施",
			"O19": "検査オーダ",
			"O33": "検体検査オーダ",
			"R01": "検査結果報告",
			"R22": "検体検査結果報告",
			"Z23": "画像検査レポート",
			"ZD1": "病名(歴)情報",
		},
		OrderStatus: Table{
			"A":  "一部結果あり",
			"CA": "オーダ取消",
			"CM": "オーダ完了",
			"DC": "中止",
			"ER": "エラー",
			"HD": "保留",
			"IP": "実施中",
			"RP": "差替済",
			"SC": "予定",
		},
		EventReason: Table{
			"01": "患者の依頼",
			"02": "医師の指示",
			"03": "人口調査",
			"O":  "その他",
			"U":  "不明",
		},
		Relationship: Table{
			"SEL": "本人",
			"SPO": "配偶者",
			"DOM": "同居人",
			"CHD": "子",
			"GCH": "孫",
			"PAR": "親",
			"SIB": "兄弟姉妹",
			"GRD": "保護者",
			"EXF": "拡大家族",
			"FND": "友人",
			"OTH": "その他",
			"UNK": "不明",
		},
		Department: departmentCodes,
		MessageCode: Table{
			"ACK": "汎用応答",
			"ADT": "入退院患者管理",
			"OMD": "食事オーダ",
			"OMG": "一般臨床オーダ",
			"OMI": "画像オーダ",
			"OML": "臨床検査オーダ",
			"OMP": "与薬オーダ",
			"ORU": "結果報告",
			"OUL": "検体検査結果",
			"PPR": "患者問題",
			"RAS": "与薬実施",
			"RDE": "与薬オーダ(エンコード)",
		},
		ResultStatus: Table{
			"C": "訂正結果",
			"D": "削除",
			"F": "最終結果",
			"I": "保留中",
			"P": "速報",
			"R": "未検証結果",
			"S": "部分結果",
			"X": "実施不可",
			"U": "最終結果の変更",
			"W": "誤記録",
		},
		DischargeDisposition: Table{
			"01": "治癒軽快",
			"02": "寛解",
			"03": "不変",
			"04": "増悪",
			"05": "中止",
			"06": "転科",
			"07": "転院",
			"09": "その他",
			"10": "外死亡",
			"20": "死亡",
			"90": "不明",
		},
		OrderControl: Table{
			"NW": "新規オーダ",
			"CA": "オーダ取消依頼",
			"OC": "オーダ取消",
			"RP": "オーダ変更依頼",
			"XO": "オーダ変更",
			"SC": "状態変更",
			"SN": "実施通知送信",
			"RE": "結果通知",
		},
		ValueType: Table{
			"CWE": "例外付きコード化",
			"CX":  "チェックディジット付き拡張複合ID",
			"DT":  "日付",
			"ED":  "カプセル化データ",
			"FT":  "書式付きテキスト",
			"NM":  "数値",
			"RP":  "参照ポインタ",
			"SN":  "構造化数値",
			"ST":  "文字列",
			"TM":  "時間",
			"TS":  "タイムスタンプ",
			"TX":  "テキストデータ",
		},
		AllergyType: Table{
			"DA": "薬剤アレルギー",
			"FA": "食物アレルギー",
			"MA": "その他アレルギー",
			"MC": "造影剤アレルギー",
			"EA": "環境アレルギー",
			"AA": "動物アレルギー",
			"PA": "植物アレルギー",
			"LA": "花粉アレルギー",
		},
		Route: Table{
			"AP":  "外用",
			"B":   "バッカル",
			"DT":  "歯科用",
			"EP":  "硬膜外",
			"GTT": "胃瘻チューブ",
			"IM":  "筋肉内",
			"IN":  "鼻腔内",
			"IT":  "髄腔内",
			"IV":  "静脈内",
			"IVP": "静注",
			"NS":  "経鼻",
			"OP":  "眼科用",
			"OT":  "耳科用",
			"PO":  "口",
			"PR":  "直腸内",
			"SC":  "皮下",
			"SL":  "舌下",
			"TD":  "経皮",
			"TP":  "局所",
			"VG":  "膣内",
			"OTH": "その他・混合",
		},
		RouteDevice: Table{
			"IVP":  "点滴ポンプ",
			"SYR":  "シリンジポンプ",
			"HL":   "ヘパリンロック",
			"IPPB": "間欠的陽圧呼吸装置",
			"NEB":  "ネブライザ",
			"PCA":  "PCAポンプ",
		},
		MessageStructure: Table{
			"ADT_A01": "A01,A04,A08",
			"ADT_A02": "A02,A12",
			"ADT_A03": "A03",
			"ADT_A05": "A05,A14",
			"ADT_A15": "A15",
			"ADT_A16": "A16,A25",
			"ADT_A21": "A21,A22,A52,A53",
			"ADT_A54": "A54",
			"ADT_A60": "A60",
			"OMD_O03": "O03",
			"OMG_O19": "O19",
			"OMI_Z23": "Z23",
			"OML_O33": "O33",
			"ORU_R01": "R01",
			"OUL_R22": "R22",
			"PPR_ZD1": "ZD1",
			"RAS_O17": "O17",
			"RDE_O11": "O11",
		},
		DisabilityType: Table{
			"AB": "連想能力障害",
			"CB": "認知障害",
			"HD": "聴覚障害",
			"MD": "運動障害",
			"PT": "患者",
			"SD": "発話障害",
			"VD": "視覚障害",
			"WD": "車椅子使用",
		},
		OrderType: Table{
			"I": "入院オーダ",
			"O": "外来オーダ",
		},
		DosageForm: Table{
			"TAB": "錠剤",
			"CAP": "カプセル剤",
			"PWD": "散剤",
			"GRN": "顆粒剤",
			"LQD": "液剤",
			"SYR": "シロップ剤",
			"OIT": "軟膏剤",
			"CRM": "クリーム剤",
			"PAT": "貼付剤",
			"SUP": "坐剤",
			"INJ": "注射剤",
			"INH": "吸入剤",
			"EYE": "点眼剤",
			"EAR": "点耳剤",
			"NAS": "点鼻剤",
		},
		DoseUnit: Table{
			"DOSE": "回分",
			"MG":   "ミリグラム",
			"G":    "グラム",
			"MCG":  "マイクログラム",
			"ML":   "ミリリットル",
			"TAB":  "錠",
			"CAP":  "カプセル",
			"PC":   "包",
			"HON":  "本",
			"AMP":  "アンプル",
			"VI":   "バイアル",
			"KIT":  "キット",
			"MAI":  "枚",
			"KO":   "個",
			"TEKI": "滴",
			"PUFF": "噴霧",
		},
		InjectionType: Table{
			"01": "一般",
			"02": "中心静脈",
			"03": "輸血",
			"04": "抗悪性腫瘍剤",
			"05": "麻薬",
			"99": "その他",
		},
		InsurancePlan: PlanTable{
			"C0": {"国民健康保険", "MI"},
			"01": {"協会けんぽ", "MI"},
			"02": {"船員保険", "MI"},
			"03": {"日雇特例被保険者の保険", "MI"},
			"06": {"組合管掌健康保険", "MI"},
			"07": {"自衛官等の療養の給付", "MI"},
			"10": {"感染症法(結核患者の適正医療)", "PE"},
			"12": {"生活保護法(医療扶助)", "PE"},
			"21": {"精神通院医療", "PE"},
			"31": {"国家公務員共済組合", "MI"},
			"32": {"地方公務員等共済組合", "MI"},
			"33": {"警察共済組合", "MI"},
			"34": {"公立学校共済組合", "MI"},
			"39": {"後期高齢者医療", "MI"},
			"67": {"国民健康保険退職者", "MI"},
			"OE": {"自費", "OE"},
		},
		PublicExpenseType: Table{
			"1": "感染症医療",
			"2": "生活保護",
			"3": "障害者自立支援",
			"4": "小児慢性特定疾病",
			"5": "難病医療",
			"9": "その他公費",
		},
		DiagnosisType: Table{
			"F": "最終診断",
			"O": "外来時",
			"H": "入院時",
			"T": "転科時",
			"D": "死亡時",
			"W": "剖検",
		},
		SpecimenType: Table{
			"001": "全血",
			"002": "血漿",
			"018": "血液",
			"019": "動脈血",
			"023": "血清",
			"028": "臍帯血",
			"041": "尿",
			"051": "髄液",
			"061": "穿刺液",
			"071": "分泌液",
			"081": "糞便",
			"990": "材料不明",
		},
		LabTestType: Table{
			"1": "一般検査",
			"2": "血液学的検査",
			"3": "生化学的検査",
			"4": "内分泌学的検査",
			"5": "免疫血清学的検査",
			"6": "微生物学的検査",
			"7": "病理学的検査",
			"8": "その他の検体検査",
			"9": "生体検査",
		},
	}
}

// departmentCodes is the JAHIS department extract (HL7 table 0069 as
// profiled for Japanese facilities).
var departmentCodes = Table{
	"01":  "内科",
	"011": "第１内科",
	"012": "第２内科",
	"013": "第３内科",
	"018": "一般内科",
	"02":  "精神科",
	"03":  "神経科",
	"04":  "神経内科",
	"05":  "呼吸器科",
	"06":  "消化器科",
	"061": "肝臓内科",
	"08":  "循環器科",
	"081": "循環器内科",
	"09":  "小児科",
	"09A": "総合診療科",
	"10":  "外科",
	"101": "第１外科",
	"102": "第２外科",
	"11":  "整形外科",
	"12":  "形成外科",
	"13":  "美容外科",
	"14":  "脳神経外科",
	"15":  "呼吸器外科",
	"16":  "心臓血管外科",
	"18":  "小児外科",
	"19":  "皮膚泌尿器科",
	"20":  "皮膚科",
	"21":  "泌尿器科",
	"22":  "性病科",
	"23":  "肛門科",
	"24":  "産婦人科",
	"25":  "産科",
	"26":  "婦人科",
	"27":  "眼科",
	"28":  "耳鼻咽喉科",
	"29":  "気管食道科",
	"30":  "放射線科",
	"31":  "麻酔科",
	"33":  "リハビリテーション科",
	"34":  "アレルギー科",
	"35":  "リウマチ科",
	"36":  "歯科",
	"37":  "矯正歯科",
	"38":  "小児歯科",
	"39":  "歯科口腔外科",
	"40":  "救急科",
	"41":  "腫瘍内科",
	"42":  "緩和ケア科",
	"43":  "血液内科",
	"44":  "腎臓内科",
	"45":  "糖尿病内科",
	"46":  "感染症内科",
	"47":  "老年内科",
}
